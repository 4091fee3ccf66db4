package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the job lifecycle state
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known job status
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Budget is the buyer's price range for a job
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Job is a buyer's posted project
type Job struct {
	ID                uuid.UUID  `json:"_id"`
	BuyerID           uuid.UUID  `json:"buyerId"`
	Category          string     `json:"category"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Budget            Budget     `json:"budget"`
	Timeline          string     `json:"timeline"`
	Location          string     `json:"location"`
	Skills            []string   `json:"skills"`
	Attachments       []string   `json:"attachments"`
	Status            Status     `json:"status"`
	ProposalsCount    int        `json:"proposalsCount"`
	HiredConsultantID *uuid.UUID `json:"hiredConsultantId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// Populated buyer identity
	Buyer *Buyer `json:"buyer,omitempty"`
}

// Buyer is the identity projection of the posting user
type Buyer struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Phone        string    `json:"phone,omitempty"`
}

// ListFilter narrows job listings
type ListFilter struct {
	Category  string
	Status    Status
	MinBudget float64
	MaxBudget float64
	Location  string
	Limit     int
	Offset    int
}
