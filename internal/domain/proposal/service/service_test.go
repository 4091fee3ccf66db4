package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertraah/marketplace-api/internal/apperror"
	consultantentity "github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	jobentity "github.com/expertraah/marketplace-api/internal/domain/job/entity"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/dao"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/entity"
)

// fakeProposalRepo mirrors the database behavior: one bid per consultant per
// job, and Accept rejecting pending siblings while moving the job along.
type fakeProposalRepo struct {
	proposals map[uuid.UUID]*entity.Proposal
	jobs      *fakeJobs
}

func newFakeProposalRepo(jobs *fakeJobs) *fakeProposalRepo {
	return &fakeProposalRepo{proposals: make(map[uuid.UUID]*entity.Proposal), jobs: jobs}
}

func (f *fakeProposalRepo) Create(_ context.Context, p *entity.Proposal) error {
	for _, existing := range f.proposals {
		if existing.JobID == p.JobID && existing.ConsultantID == p.ConsultantID {
			return dao.ErrDuplicateProposal
		}
	}
	copied := *p
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	f.proposals[p.ID] = &copied
	if job := f.jobs.jobs[p.JobID]; job != nil {
		job.ProposalsCount++
	}
	return nil
}

func (f *fakeProposalRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	if job := f.jobs.jobs[p.JobID]; job != nil {
		copied.Job = &entity.JobRef{
			ID:      job.ID,
			Title:   job.Title,
			Status:  string(job.Status),
			BuyerID: job.BuyerID,
		}
	}
	return &copied, nil
}

func (f *fakeProposalRepo) List(_ context.Context, status entity.Status, limit, offset int) ([]entity.Proposal, int64, error) {
	var out []entity.Proposal
	for _, p := range f.proposals {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeProposalRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Proposal, error) {
	var out []entity.Proposal
	for _, p := range f.proposals {
		if p.JobID == jobID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProposalRepo) ListByConsultant(_ context.Context, consultantID uuid.UUID) ([]entity.Proposal, error) {
	var out []entity.Proposal
	for _, p := range f.proposals {
		if p.ConsultantID == consultantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProposalRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]entity.Proposal, error) {
	var out []entity.Proposal
	for _, p := range f.proposals {
		if job := f.jobs.jobs[p.JobID]; job != nil && job.BuyerID == buyerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProposalRepo) Update(_ context.Context, p *entity.Proposal) error {
	if stored, ok := f.proposals[p.ID]; ok {
		stored.BidAmount = p.BidAmount
		stored.DeliveryTime = p.DeliveryTime
		stored.CoverLetter = p.CoverLetter
		stored.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeProposalRepo) Accept(_ context.Context, proposalID, jobID, consultantID uuid.UUID) error {
	for _, p := range f.proposals {
		if p.JobID != jobID {
			continue
		}
		if p.ID == proposalID {
			p.Status = entity.StatusAccepted
		} else if p.Status == entity.StatusPending {
			p.Status = entity.StatusRejected
		}
	}
	if job := f.jobs.jobs[jobID]; job != nil {
		job.Status = jobentity.StatusInProgress
		job.HiredConsultantID = &consultantID
	}
	return nil
}

func (f *fakeProposalRepo) SetStatus(_ context.Context, id uuid.UUID, status entity.Status) error {
	if p, ok := f.proposals[id]; ok {
		p.Status = status
	}
	return nil
}

func (f *fakeProposalRepo) Delete(_ context.Context, id, jobID uuid.UUID) error {
	delete(f.proposals, id)
	if job := f.jobs.jobs[jobID]; job != nil && job.ProposalsCount > 0 {
		job.ProposalsCount--
	}
	return nil
}

type fakeJobs struct {
	jobs map[uuid.UUID]*jobentity.Job
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*jobentity.Job, error) {
	return f.jobs[id], nil
}

type fakeConsultants struct {
	consultants map[uuid.UUID]*consultantentity.Consultant
}

func (f *fakeConsultants) GetByID(_ context.Context, id uuid.UUID) (*consultantentity.Consultant, error) {
	return f.consultants[id], nil
}

func (f *fakeConsultants) GetByUserID(_ context.Context, userID uuid.UUID) (*consultantentity.Consultant, error) {
	for _, c := range f.consultants {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

type fixture struct {
	svc         *Service
	repo        *fakeProposalRepo
	jobs        *fakeJobs
	buyerID     uuid.UUID
	consultant  *consultantentity.Consultant
	consultant2 *consultantentity.Consultant
	job         *jobentity.Job
}

func newFixture() *fixture {
	buyerID := uuid.New()
	job := &jobentity.Job{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Title:   "Build a website",
		Status:  jobentity.StatusOpen,
	}
	consultant := &consultantentity.Consultant{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		IsVerified: true,
	}
	consultant2 := &consultantentity.Consultant{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		IsVerified: true,
	}

	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobentity.Job{job.ID: job}}
	repo := newFakeProposalRepo(jobs)
	consultants := &fakeConsultants{consultants: map[uuid.UUID]*consultantentity.Consultant{
		consultant.ID:  consultant,
		consultant2.ID: consultant2,
	}}

	return &fixture{
		svc:         New(repo, jobs, consultants),
		repo:        repo,
		jobs:        jobs,
		buyerID:     buyerID,
		consultant:  consultant,
		consultant2: consultant2,
		job:         job,
	}
}

func (fx *fixture) submit(t *testing.T, consultantID uuid.UUID) *entity.Proposal {
	t.Helper()
	p, err := fx.svc.Create(context.Background(), CreateInput{
		JobID:        fx.job.ID,
		ConsultantID: consultantID,
		BidAmount:    500,
		DeliveryTime: "2 weeks",
		CoverLetter:  "I can do this",
	})
	require.NoError(t, err)
	return p
}

func TestCreateProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("submits a bid and bumps the job counter", func(t *testing.T) {
		fx := newFixture()

		p := fx.submit(t, fx.consultant.ID)
		assert.Equal(t, entity.StatusPending, p.Status)
		assert.Equal(t, 1, fx.job.ProposalsCount)
	})

	t.Run("rejects a second bid on the same job", func(t *testing.T) {
		fx := newFixture()
		fx.submit(t, fx.consultant.ID)

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, ConsultantID: fx.consultant.ID,
			BidAmount: 600, CoverLetter: "again",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
	})

	t.Run("rejects unverified consultants", func(t *testing.T) {
		fx := newFixture()
		fx.consultant.IsVerified = false

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, ConsultantID: fx.consultant.ID,
			BidAmount: 500, CoverLetter: "please",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})

	t.Run("rejects bids on closed jobs", func(t *testing.T) {
		fx := newFixture()
		fx.job.Status = jobentity.StatusCompleted

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, ConsultantID: fx.consultant.ID,
			BidAmount: 500, CoverLetter: "late",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
	})

	t.Run("rejects bidding on your own job", func(t *testing.T) {
		fx := newFixture()
		fx.consultant.UserID = fx.buyerID

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, ConsultantID: fx.consultant.ID,
			BidAmount: 500, CoverLetter: "self deal",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
	})
}

func TestAcceptProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("accepting hires the consultant and rejects siblings", func(t *testing.T) {
		fx := newFixture()
		winner := fx.submit(t, fx.consultant.ID)
		loser := fx.submit(t, fx.consultant2.ID)

		accepted, err := fx.svc.Accept(ctx, winner.ID, fx.buyerID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAccepted, accepted.Status)

		rejected, err := fx.svc.GetByID(ctx, loser.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusRejected, rejected.Status)

		assert.Equal(t, jobentity.StatusInProgress, fx.job.Status)
		require.NotNil(t, fx.job.HiredConsultantID)
		assert.Equal(t, fx.consultant.ID, *fx.job.HiredConsultantID)
	})

	t.Run("only the buyer may accept", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)

		_, err := fx.svc.Accept(ctx, p.ID, uuid.New())
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})

	t.Run("a settled proposal cannot be accepted again", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)

		_, err := fx.svc.Accept(ctx, p.ID, fx.buyerID)
		require.NoError(t, err)

		_, err = fx.svc.Accept(ctx, p.ID, fx.buyerID)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
	})
}

func TestUpdateProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("the bidding consultant may edit a pending bid", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)

		amount := 750.0
		updated, err := fx.svc.Update(ctx, p.ID, fx.consultant.UserID, UpdateInput{BidAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, 750.0, updated.BidAmount)
	})

	t.Run("others may not edit", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)

		amount := 750.0
		_, err := fx.svc.Update(ctx, p.ID, fx.consultant2.UserID, UpdateInput{BidAmount: &amount})
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})
}

func TestDeleteProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("withdrawing decrements the job counter", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)
		require.Equal(t, 1, fx.job.ProposalsCount)

		require.NoError(t, fx.svc.Delete(ctx, p.ID, fx.consultant.UserID))
		assert.Equal(t, 0, fx.job.ProposalsCount)

		_, err := fx.svc.GetByID(ctx, p.ID)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("only the owner may withdraw", func(t *testing.T) {
		fx := newFixture()
		p := fx.submit(t, fx.consultant.ID)

		err := fx.svc.Delete(ctx, p.ID, fx.consultant2.UserID)
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})
}
