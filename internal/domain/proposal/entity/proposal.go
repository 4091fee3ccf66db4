package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the proposal lifecycle state
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Proposal is a consultant's bid on a posted job
type Proposal struct {
	ID           uuid.UUID `json:"_id"`
	JobID        uuid.UUID `json:"jobId"`
	ConsultantID uuid.UUID `json:"consultantId"`
	BidAmount    float64   `json:"bidAmount"`
	DeliveryTime string    `json:"deliveryTime"`
	CoverLetter  string    `json:"coverLetter"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Populated references
	Job        *JobRef        `json:"job,omitempty"`
	Consultant *ConsultantRef `json:"consultant,omitempty"`
}

// JobRef is the projection of the bid's job
type JobRef struct {
	ID        uuid.UUID `json:"_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	BudgetMin float64   `json:"budgetMin"`
	BudgetMax float64   `json:"budgetMax"`
	Status    string    `json:"status"`
	BuyerID   uuid.UUID `json:"buyerId"`
}

// ConsultantRef is the projection of the bidding consultant
type ConsultantRef struct {
	ID         uuid.UUID `json:"_id"`
	UserID     uuid.UUID `json:"userId"`
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	HourlyRate float64   `json:"hourlyRate"`
	Rating     float64   `json:"rating"`
}
