package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccountType distinguishes buyers from consultants
type AccountType string

const (
	AccountTypeBuyer      AccountType = "buyer"
	AccountTypeConsultant AccountType = "consultant"
)

// Roles beyond the account type
const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// User represents a marketplace account
type User struct {
	ID           uuid.UUID   `json:"_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	AccountType  AccountType `json:"accountType"`
	Roles        []string    `json:"roles,omitempty"`
	ProfileImage string      `json:"profileImage,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	IsVerified   bool        `json:"isVerified"`
	IsBanned     bool        `json:"isBanned"`
	IsOnline     bool        `json:"isOnline"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// HasRole reports whether the user carries the given role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidAccountType reports whether t is a known account type
func ValidAccountType(t AccountType) bool {
	return t == AccountTypeBuyer || t == AccountTypeConsultant
}
