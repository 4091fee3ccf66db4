package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/domain/job/entity"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// JobRepository defines the interface for job storage
type JobRepository interface {
	Create(ctx context.Context, j *entity.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	List(ctx context.Context, f entity.ListFilter) ([]entity.Job, int64, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Job, error)
	Update(ctx context.Context, j *entity.Job) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserGetter resolves user accounts for reference checks
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}

// Service handles job postings
type Service struct {
	jobs  JobRepository
	users UserGetter
}

// New creates a new job service
func New(jobs JobRepository, users UserGetter) *Service {
	return &Service{jobs: jobs, users: users}
}

// CreateInput represents input for posting a job
type CreateInput struct {
	BuyerID     uuid.UUID
	Category    string
	Title       string
	Description string
	Budget      entity.Budget
	Timeline    string
	Location    string
	Skills      []string
	Attachments []string
}

// Create posts a new job for an existing buyer
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Job, error) {
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return nil, apperror.InvalidArgument("category, title and description are required")
	}
	if in.Budget.Min < 0 || in.Budget.Max < in.Budget.Min {
		return nil, apperror.InvalidArgument("budget range is invalid")
	}

	buyer, err := s.users.GetByID(ctx, in.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("getting buyer: %w", err)
	}
	if buyer == nil {
		return nil, apperror.NotFound("buyer not found")
	}

	job := &entity.Job{
		ID:          uuid.New(),
		BuyerID:     in.BuyerID,
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Timeline:    in.Timeline,
		Location:    in.Location,
		Skills:      orEmpty(in.Skills),
		Attachments: orEmpty(in.Attachments),
		Status:      entity.StatusOpen,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	return s.jobs.GetByID(ctx, job.ID)
}

// ListOutput is a filtered page of jobs
type ListOutput struct {
	Jobs  []entity.Job `json:"jobs"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Pages int          `json:"pages"`
}

// List returns jobs matching the filter
func (s *Service) List(ctx context.Context, f entity.ListFilter, page int) (*ListOutput, error) {
	if page < 1 {
		page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Status != "" && !entity.ValidStatus(f.Status) {
		return nil, apperror.InvalidArgument("unknown status filter")
	}
	f.Offset = (page - 1) * f.Limit

	jobs, total, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	if jobs == nil {
		jobs = []entity.Job{}
	}

	return &ListOutput{
		Jobs:  jobs,
		Total: total,
		Page:  page,
		Limit: f.Limit,
		Pages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

// GetByID retrieves a job
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	if job == nil {
		return nil, apperror.NotFound("job not found")
	}
	return job, nil
}

// ListByBuyer retrieves all jobs posted by a buyer
func (s *Service) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Job, error) {
	jobs, err := s.jobs.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("listing buyer jobs: %w", err)
	}
	if jobs == nil {
		jobs = []entity.Job{}
	}
	return jobs, nil
}

// UpdateInput represents partial job updates
type UpdateInput struct {
	Category    *string
	Title       *string
	Description *string
	Budget      *entity.Budget
	Timeline    *string
	Location    *string
	Skills      []string
	Attachments []string
	Status      *entity.Status
}

// Update applies partial updates; only the posting buyer may update
func (s *Service) Update(ctx context.Context, id, callerID uuid.UUID, in UpdateInput) (*entity.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	if job == nil {
		return nil, apperror.NotFound("job not found")
	}
	if job.BuyerID != callerID {
		return nil, apperror.PermissionDenied("only the job owner can update it")
	}

	if in.Category != nil {
		job.Category = *in.Category
	}
	if in.Title != nil {
		job.Title = *in.Title
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Budget != nil {
		if in.Budget.Min < 0 || in.Budget.Max < in.Budget.Min {
			return nil, apperror.InvalidArgument("budget range is invalid")
		}
		job.Budget = *in.Budget
	}
	if in.Timeline != nil {
		job.Timeline = *in.Timeline
	}
	if in.Location != nil {
		job.Location = *in.Location
	}
	if in.Skills != nil {
		job.Skills = in.Skills
	}
	if in.Attachments != nil {
		job.Attachments = in.Attachments
	}
	if in.Status != nil {
		if !entity.ValidStatus(*in.Status) {
			return nil, apperror.InvalidArgument("unknown status")
		}
		job.Status = *in.Status
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("updating job: %w", err)
	}
	return job, nil
}

// Delete removes a job; only the posting buyer may delete
func (s *Service) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting job: %w", err)
	}
	if job == nil {
		return apperror.NotFound("job not found")
	}
	if job.BuyerID != callerID {
		return apperror.PermissionDenied("only the job owner can delete it")
	}

	if _, err := s.jobs.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
