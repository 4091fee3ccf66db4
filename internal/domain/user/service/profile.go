package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/domain/user/dao"
	"github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
}

// ProfileService handles extended user profiles
type ProfileService struct {
	profiles ProfileRepository
	users    UserRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileRepository, users UserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// CreateProfileInput represents input for creating a profile
type CreateProfileInput struct {
	UserID         uuid.UUID
	Fullname       string
	Bio            string
	ContactNumber  string
	PortfolioLinks []string
}

// CreateProfile creates the user's single profile
func (s *ProfileService) CreateProfile(ctx context.Context, in CreateProfileInput) (*entity.Profile, error) {
	if in.Fullname == "" || in.ContactNumber == "" {
		return nil, apperror.InvalidArgument("fullname and contact number are required")
	}
	if err := entity.ValidatePortfolioLinks(in.PortfolioLinks); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	profile := &entity.Profile{
		ID:               uuid.New(),
		UserID:           in.UserID,
		Fullname:         in.Fullname,
		Bio:              in.Bio,
		ContactNumber:    in.ContactNumber,
		PortfolioLinks:   in.PortfolioLinks,
		VerificationDocs: []string{},
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, dao.ErrDuplicateProfile) {
			return nil, apperror.Conflict("user already has a profile")
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return profile, nil
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if profile == nil {
		return nil, apperror.NotFound("profile not found")
	}
	return profile, nil
}

// UpdateProfileInput represents input for updating a profile
type UpdateProfileInput struct {
	Fullname       *string
	Bio            *string
	ContactNumber  *string
	PortfolioLinks []string
}

// UpdateProfile applies partial updates to a user's profile
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*entity.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if profile == nil {
		return nil, apperror.NotFound("profile not found")
	}

	if in.Fullname != nil {
		profile.Fullname = *in.Fullname
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.ContactNumber != nil {
		profile.ContactNumber = *in.ContactNumber
	}
	if in.PortfolioLinks != nil {
		if err := entity.ValidatePortfolioLinks(in.PortfolioLinks); err != nil {
			return nil, err
		}
		profile.PortfolioLinks = in.PortfolioLinks
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return profile, nil
}

// AddVerificationDocs appends verification document URLs to the profile
func (s *ProfileService) AddVerificationDocs(ctx context.Context, userID uuid.UUID, docs []string) (*entity.Profile, error) {
	if len(docs) == 0 {
		return nil, apperror.InvalidArgument("at least one document is required")
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if profile == nil {
		return nil, apperror.NotFound("profile not found")
	}

	profile.VerificationDocs = append(profile.VerificationDocs, docs...)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return profile, nil
}
