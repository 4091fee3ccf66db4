package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
)

// Review is client feedback for a consultant on a completed job. A buyer may
// review a given job once.
type Review struct {
	ID           uuid.UUID `json:"_id"`
	JobID        uuid.UUID `json:"jobId"`
	BuyerID      uuid.UUID `json:"buyerId"`
	ConsultantID uuid.UUID `json:"consultantId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Populated reviewer identity
	Buyer *Reviewer `json:"buyer,omitempty"`
}

// Reviewer is the identity projection of the reviewing buyer
type Reviewer struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

// ValidateRating checks the star rating is within 1..5
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperror.InvalidArgument("rating must be between 1 and 5")
	}
	return nil
}
