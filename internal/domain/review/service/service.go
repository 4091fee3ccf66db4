package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	consultantentity "github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	jobentity "github.com/expertraah/marketplace-api/internal/domain/job/entity"
	"github.com/expertraah/marketplace-api/internal/domain/review/dao"
	"github.com/expertraah/marketplace-api/internal/domain/review/entity"
)

// ReviewRepository defines the interface for review storage
type ReviewRepository interface {
	Create(ctx context.Context, rev *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Review, error)
	Delete(ctx context.Context, rev *entity.Review) error
}

// JobGetter resolves jobs for reference checks
type JobGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*jobentity.Job, error)
}

// ConsultantGetter resolves consultants for reference checks
type ConsultantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*consultantentity.Consultant, error)
}

// Service handles client feedback
type Service struct {
	reviews     ReviewRepository
	jobs        JobGetter
	consultants ConsultantGetter
}

// New creates a new review service
func New(reviews ReviewRepository, jobs JobGetter, consultants ConsultantGetter) *Service {
	return &Service{reviews: reviews, jobs: jobs, consultants: consultants}
}

// CreateInput represents input for submitting a review
type CreateInput struct {
	JobID        uuid.UUID
	BuyerID      uuid.UUID
	ConsultantID uuid.UUID
	Rating       int
	Comment      string
}

// Create submits feedback for a completed job. The consultant's aggregate
// rating is refreshed in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Review, error) {
	if err := entity.ValidateRating(in.Rating); err != nil {
		return nil, err
	}
	if in.Comment == "" {
		return nil, apperror.InvalidArgument("comment is required")
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	if job == nil {
		return nil, apperror.NotFound("job not found")
	}
	if job.Status != jobentity.StatusCompleted {
		return nil, apperror.InvalidArgument("job is not completed")
	}
	if job.BuyerID != in.BuyerID {
		return nil, apperror.PermissionDenied("only the job owner can review it")
	}

	consultant, err := s.consultants.GetByID(ctx, in.ConsultantID)
	if err != nil {
		return nil, fmt.Errorf("getting consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}
	if consultant.UserID == in.BuyerID {
		return nil, apperror.InvalidArgument("consultants cannot review their own jobs")
	}

	review := &entity.Review{
		ID:           uuid.New(),
		JobID:        in.JobID,
		BuyerID:      in.BuyerID,
		ConsultantID: in.ConsultantID,
		Rating:       in.Rating,
		Comment:      in.Comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, dao.ErrDuplicateReview) {
			return nil, apperror.Conflict("job already reviewed by this buyer")
		}
		return nil, fmt.Errorf("creating review: %w", err)
	}

	return s.reviews.GetByID(ctx, review.ID)
}

// ListByConsultant retrieves a consultant's reviews
func (s *Service) ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviews.ListByConsultant(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	if reviews == nil {
		reviews = []entity.Review{}
	}
	return reviews, nil
}

// Delete removes a review; only its author may delete. The consultant's
// aggregate rating is refreshed transactionally.
func (s *Service) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting review: %w", err)
	}
	if review == nil {
		return apperror.NotFound("review not found")
	}
	if review.BuyerID != callerID {
		return apperror.PermissionDenied("only the review author can delete it")
	}

	if err := s.reviews.Delete(ctx, review); err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return nil
}
