package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	consultantentity "github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	jobentity "github.com/expertraah/marketplace-api/internal/domain/job/entity"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/dao"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/entity"
)

// ProposalRepository defines the interface for proposal storage
type ProposalRepository interface {
	Create(ctx context.Context, p *entity.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	List(ctx context.Context, status entity.Status, limit, offset int) ([]entity.Proposal, int64, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error)
	ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Proposal, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Proposal, error)
	Update(ctx context.Context, p *entity.Proposal) error
	Accept(ctx context.Context, proposalID, jobID, consultantID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status entity.Status) error
	Delete(ctx context.Context, id, jobID uuid.UUID) error
}

// JobGetter resolves jobs for reference checks
type JobGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*jobentity.Job, error)
}

// ConsultantGetter resolves consultants for reference checks
type ConsultantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*consultantentity.Consultant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*consultantentity.Consultant, error)
}

// Service handles consultant bids on jobs
type Service struct {
	proposals   ProposalRepository
	jobs        JobGetter
	consultants ConsultantGetter
}

// New creates a new proposal service
func New(proposals ProposalRepository, jobs JobGetter, consultants ConsultantGetter) *Service {
	return &Service{proposals: proposals, jobs: jobs, consultants: consultants}
}

// CreateInput represents input for submitting a bid
type CreateInput struct {
	JobID        uuid.UUID
	ConsultantID uuid.UUID
	BidAmount    float64
	DeliveryTime string
	CoverLetter  string
}

// Create submits a bid on an open job
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Proposal, error) {
	if in.BidAmount <= 0 {
		return nil, apperror.InvalidArgument("bid amount must be positive")
	}
	if in.CoverLetter == "" {
		return nil, apperror.InvalidArgument("cover letter is required")
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	if job == nil {
		return nil, apperror.NotFound("job not found")
	}
	if job.Status != jobentity.StatusOpen {
		return nil, apperror.InvalidArgument("job is not open for proposals")
	}

	consultant, err := s.consultants.GetByID(ctx, in.ConsultantID)
	if err != nil {
		return nil, fmt.Errorf("getting consultant: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}
	if !consultant.IsVerified {
		return nil, apperror.PermissionDenied("consultant is not verified")
	}
	if consultant.UserID == job.BuyerID {
		return nil, apperror.InvalidArgument("cannot bid on your own job")
	}

	proposal := &entity.Proposal{
		ID:           uuid.New(),
		JobID:        in.JobID,
		ConsultantID: in.ConsultantID,
		BidAmount:    in.BidAmount,
		DeliveryTime: in.DeliveryTime,
		CoverLetter:  in.CoverLetter,
		Status:       entity.StatusPending,
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		if errors.Is(err, dao.ErrDuplicateProposal) {
			return nil, apperror.Conflict("proposal already submitted for this job")
		}
		return nil, fmt.Errorf("creating proposal: %w", err)
	}

	return s.proposals.GetByID(ctx, proposal.ID)
}

// ListOutput is a filtered page of proposals
type ListOutput struct {
	Proposals []entity.Proposal `json:"proposals"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Pages     int               `json:"pages"`
}

// List returns proposals, optionally filtered by status
func (s *Service) List(ctx context.Context, status entity.Status, page, limit int) (*ListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	proposals, total, err := s.proposals.List(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	if proposals == nil {
		proposals = []entity.Proposal{}
	}

	return &ListOutput{
		Proposals: proposals,
		Total:     total,
		Page:      page,
		Limit:     limit,
		Pages:     int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// GetByID retrieves a proposal
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting proposal: %w", err)
	}
	if proposal == nil {
		return nil, apperror.NotFound("proposal not found")
	}
	return proposal, nil
}

// ListByJob retrieves all bids on a job
func (s *Service) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error) {
	return s.listOrEmpty(s.proposals.ListByJob(ctx, jobID))
}

// ListByConsultant retrieves a consultant's bids
func (s *Service) ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Proposal, error) {
	return s.listOrEmpty(s.proposals.ListByConsultant(ctx, consultantID))
}

// ListByBuyer retrieves bids received across a buyer's jobs
func (s *Service) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Proposal, error) {
	return s.listOrEmpty(s.proposals.ListByBuyer(ctx, buyerID))
}

// UpdateInput represents partial bid updates
type UpdateInput struct {
	BidAmount    *float64
	DeliveryTime *string
	CoverLetter  *string
}

// Update edits a pending bid; only the bidding consultant's user may edit
func (s *Service) Update(ctx context.Context, id, callerID uuid.UUID, in UpdateInput) (*entity.Proposal, error) {
	proposal, err := s.ownedPending(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if in.BidAmount != nil {
		if *in.BidAmount <= 0 {
			return nil, apperror.InvalidArgument("bid amount must be positive")
		}
		proposal.BidAmount = *in.BidAmount
	}
	if in.DeliveryTime != nil {
		proposal.DeliveryTime = *in.DeliveryTime
	}
	if in.CoverLetter != nil {
		proposal.CoverLetter = *in.CoverLetter
	}

	if err := s.proposals.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("updating proposal: %w", err)
	}
	return proposal, nil
}

// Accept accepts a pending bid; only the job's buyer may accept. The job
// moves to in_progress and sibling bids are rejected in the same transaction.
func (s *Service) Accept(ctx context.Context, id, callerID uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Job.BuyerID != callerID {
		return nil, apperror.PermissionDenied("only the job owner can accept proposals")
	}
	if proposal.Status != entity.StatusPending {
		return nil, apperror.InvalidArgument("proposal is not pending")
	}

	if err := s.proposals.Accept(ctx, proposal.ID, proposal.JobID, proposal.ConsultantID); err != nil {
		return nil, fmt.Errorf("accepting proposal: %w", err)
	}

	return s.proposals.GetByID(ctx, id)
}

// Reject rejects a pending bid; only the job's buyer may reject
func (s *Service) Reject(ctx context.Context, id, callerID uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Job.BuyerID != callerID {
		return nil, apperror.PermissionDenied("only the job owner can reject proposals")
	}
	if proposal.Status != entity.StatusPending {
		return nil, apperror.InvalidArgument("proposal is not pending")
	}

	if err := s.proposals.SetStatus(ctx, id, entity.StatusRejected); err != nil {
		return nil, fmt.Errorf("rejecting proposal: %w", err)
	}

	return s.proposals.GetByID(ctx, id)
}

// Delete withdraws a pending bid; only the bidding consultant's user may
// withdraw. The job's proposal counter goes down with it.
func (s *Service) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	proposal, err := s.ownedPending(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.proposals.Delete(ctx, proposal.ID, proposal.JobID); err != nil {
		return fmt.Errorf("deleting proposal: %w", err)
	}
	return nil
}

func (s *Service) ownedPending(ctx context.Context, id, callerID uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	consultant, err := s.consultants.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("getting caller consultant: %w", err)
	}
	if consultant == nil || consultant.ID != proposal.ConsultantID {
		return nil, apperror.PermissionDenied("only the proposal owner can modify it")
	}
	if proposal.Status != entity.StatusPending {
		return nil, apperror.InvalidArgument("proposal is not pending")
	}
	return proposal, nil
}

func (s *Service) listOrEmpty(proposals []entity.Proposal, err error) ([]entity.Proposal, error) {
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	if proposals == nil {
		proposals = []entity.Proposal{}
	}
	return proposals, nil
}
