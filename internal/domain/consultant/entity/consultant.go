package entity

import (
	"time"

	"github.com/google/uuid"
)

// Availability describes how much new work a consultant takes on
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLimited     Availability = "limited"
	AvailabilityUnavailable Availability = "unavailable"
)

// ValidAvailability reports whether a is a known availability value
func ValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityUnavailable:
		return true
	}
	return false
}

// Consultant is a service-provider profile attached to a user account
type Consultant struct {
	ID                  uuid.UUID    `json:"_id"`
	UserID              uuid.UUID    `json:"userId"`
	Title               string       `json:"title"`
	Bio                 string       `json:"bio"`
	Specialization      []string     `json:"specialization"`
	HourlyRate          float64      `json:"hourlyRate"`
	Availability        Availability `json:"availability"`
	Experience          string       `json:"experience"`
	Skills              []string     `json:"skills"`
	IDCardFront         string       `json:"idCardFront,omitempty"`
	IDCardBack          string       `json:"idCardBack,omitempty"`
	SupportingDocuments []string     `json:"supportingDocuments"`
	IsVerified          bool         `json:"isVerified"`
	Rating              float64      `json:"rating"`
	TotalProjects       int          `json:"totalProjects"`
	TotalEarnings       float64      `json:"totalEarnings"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`

	// Populated identity of the owning user
	User *Identity `json:"user,omitempty"`
}

// Identity is the projection of the owning user account
type Identity struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	IsOnline     bool      `json:"isOnline"`
}

// ListFilter narrows consultant listings
type ListFilter struct {
	Specialization string
	Availability   Availability
	MinRating      float64
	VerifiedOnly   bool
	Limit          int
	Offset         int
}
