package entity

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
)

// Profile holds extended user information beyond the account record.
// Each user has at most one profile.
type Profile struct {
	ID               uuid.UUID `json:"_id"`
	UserID           uuid.UUID `json:"userId"`
	Fullname         string    `json:"fullname"`
	Bio              string    `json:"bio"`
	ContactNumber    string    `json:"contactNumber"`
	PortfolioLinks   []string  `json:"portfolioLinks"`
	VerificationDocs []string  `json:"verificationDocs"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ValidatePortfolioLinks checks every link is an absolute http(s) URL
func ValidatePortfolioLinks(links []string) error {
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperror.InvalidArgument("invalid URL format in portfolio links")
		}
	}
	return nil
}
