package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/dao"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// ConsultantRepository defines the interface for consultant storage
type ConsultantRepository interface {
	Create(ctx context.Context, c *entity.Consultant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Consultant, error)
	List(ctx context.Context, f entity.ListFilter) ([]entity.Consultant, int64, error)
	Update(ctx context.Context, c *entity.Consultant) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*entity.Consultant, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserGetter resolves user accounts for reference checks
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}

// Service handles consultant profiles and verification
type Service struct {
	consultants ConsultantRepository
	users       UserGetter
}

// New creates a new consultant service
func New(consultants ConsultantRepository, users UserGetter) *Service {
	return &Service{consultants: consultants, users: users}
}

// CreateInput represents input for creating a consultant profile
type CreateInput struct {
	UserID         uuid.UUID
	Title          string
	Bio            string
	Specialization []string
	HourlyRate     float64
	Experience     string
	Skills         []string
}

// Create provisions a consultant record for an existing consultant-type user
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Consultant, error) {
	if in.Title == "" {
		return nil, apperror.InvalidArgument("title is required")
	}
	if in.HourlyRate < 0 {
		return nil, apperror.InvalidArgument("hourly rate cannot be negative")
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	if user.AccountType != userentity.AccountTypeConsultant {
		return nil, apperror.InvalidArgument("user is not a consultant account")
	}

	consultant := &entity.Consultant{
		ID:                  uuid.New(),
		UserID:              in.UserID,
		Title:               in.Title,
		Bio:                 in.Bio,
		Specialization:      orEmpty(in.Specialization),
		HourlyRate:          in.HourlyRate,
		Availability:        entity.AvailabilityAvailable,
		Experience:          in.Experience,
		Skills:              orEmpty(in.Skills),
		SupportingDocuments: []string{},
	}

	if err := s.consultants.Create(ctx, consultant); err != nil {
		if errors.Is(err, dao.ErrDuplicateConsultant) {
			return nil, apperror.Conflict("consultant profile already exists for user")
		}
		return nil, fmt.Errorf("creating consultant: %w", err)
	}

	return s.consultants.GetByID(ctx, consultant.ID)
}

// ListOutput is a filtered page of consultants
type ListOutput struct {
	Consultants []entity.Consultant `json:"consultants"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	Pages       int                 `json:"pages"`
}

// List returns consultants matching the filter
func (s *Service) List(ctx context.Context, f entity.ListFilter, page int) (*ListOutput, error) {
	if page < 1 {
		page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Availability != "" && !entity.ValidAvailability(f.Availability) {
		return nil, apperror.InvalidArgument("unknown availability filter")
	}
	f.Offset = (page - 1) * f.Limit

	consultants, total, err := s.consultants.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing consultants: %w", err)
	}
	if consultants == nil {
		consultants = []entity.Consultant{}
	}

	return &ListOutput{
		Consultants: consultants,
		Total:       total,
		Page:        page,
		Limit:       f.Limit,
		Pages:       int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

// GetByID retrieves a consultant
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultant, error) {
	consultant, err := s.consultants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}
	return consultant, nil
}

// GetByUserID retrieves a consultant by owning user. A missing record is a
// normal state (the user has not set up a consultant profile yet).
func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Consultant, error) {
	consultant, err := s.consultants.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting consultant by user: %w", err)
	}
	return consultant, nil
}

// UpdateInput represents partial consultant updates
type UpdateInput struct {
	Title          *string
	Bio            *string
	Specialization []string
	HourlyRate     *float64
	Availability   *entity.Availability
	Experience     *string
	Skills         []string
}

// Update applies partial updates to a consultant profile
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*entity.Consultant, error) {
	consultant, err := s.consultants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}

	if in.Title != nil {
		consultant.Title = *in.Title
	}
	if in.Bio != nil {
		consultant.Bio = *in.Bio
	}
	if in.Specialization != nil {
		consultant.Specialization = in.Specialization
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, apperror.InvalidArgument("hourly rate cannot be negative")
		}
		consultant.HourlyRate = *in.HourlyRate
	}
	if in.Availability != nil {
		if !entity.ValidAvailability(*in.Availability) {
			return nil, apperror.InvalidArgument("unknown availability")
		}
		consultant.Availability = *in.Availability
	}
	if in.Experience != nil {
		consultant.Experience = *in.Experience
	}
	if in.Skills != nil {
		consultant.Skills = in.Skills
	}

	if err := s.consultants.Update(ctx, consultant); err != nil {
		return nil, fmt.Errorf("updating consultant: %w", err)
	}
	return consultant, nil
}

// DocumentsInput carries verification document URLs
type DocumentsInput struct {
	IDCardFront         string
	IDCardBack          string
	SupportingDocuments []string
}

// UploadDocuments attaches identity documents for the verification queue
func (s *Service) UploadDocuments(ctx context.Context, id uuid.UUID, in DocumentsInput) (*entity.Consultant, error) {
	consultant, err := s.consultants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}

	if in.IDCardFront != "" {
		consultant.IDCardFront = in.IDCardFront
	}
	if in.IDCardBack != "" {
		consultant.IDCardBack = in.IDCardBack
	}
	if in.SupportingDocuments != nil {
		consultant.SupportingDocuments = in.SupportingDocuments
	}

	if err := s.consultants.Update(ctx, consultant); err != nil {
		return nil, fmt.Errorf("updating consultant: %w", err)
	}
	return consultant, nil
}

// Verify marks a consultant as verified
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (*entity.Consultant, error) {
	consultant, err := s.consultants.SetVerified(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("verifying consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}
	return consultant, nil
}

// Delete removes a consultant profile
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.consultants.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting consultant: %w", err)
	}
	if !deleted {
		return apperror.NotFound("consultant not found")
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
