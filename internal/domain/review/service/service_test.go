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
	"github.com/expertraah/marketplace-api/internal/domain/review/dao"
	"github.com/expertraah/marketplace-api/internal/domain/review/entity"
)

// fakeReviewRepo refreshes the consultant rating on writes the way the
// transactional DAO does.
type fakeReviewRepo struct {
	reviews     map[uuid.UUID]*entity.Review
	consultants map[uuid.UUID]*consultantentity.Consultant
}

func (f *fakeReviewRepo) Create(_ context.Context, rev *entity.Review) error {
	for _, existing := range f.reviews {
		if existing.JobID == rev.JobID && existing.BuyerID == rev.BuyerID {
			return dao.ErrDuplicateReview
		}
	}
	copied := *rev
	copied.CreatedAt = time.Now()
	f.reviews[rev.ID] = &copied
	f.refreshRating(rev.ConsultantID)
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReviewRepo) ListByConsultant(_ context.Context, consultantID uuid.UUID) ([]entity.Review, error) {
	var out []entity.Review
	for _, r := range f.reviews {
		if r.ConsultantID == consultantID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, rev *entity.Review) error {
	delete(f.reviews, rev.ID)
	f.refreshRating(rev.ConsultantID)
	return nil
}

func (f *fakeReviewRepo) refreshRating(consultantID uuid.UUID) {
	c, ok := f.consultants[consultantID]
	if !ok {
		return
	}
	var sum, n float64
	for _, r := range f.reviews {
		if r.ConsultantID == consultantID {
			sum += float64(r.Rating)
			n++
		}
	}
	if n == 0 {
		c.Rating = 0
		return
	}
	c.Rating = sum / n
}

type fakeJobGetter struct {
	jobs map[uuid.UUID]*jobentity.Job
}

func (f *fakeJobGetter) GetByID(_ context.Context, id uuid.UUID) (*jobentity.Job, error) {
	return f.jobs[id], nil
}

type fakeConsultantGetter struct {
	consultants map[uuid.UUID]*consultantentity.Consultant
}

func (f *fakeConsultantGetter) GetByID(_ context.Context, id uuid.UUID) (*consultantentity.Consultant, error) {
	return f.consultants[id], nil
}

type fixture struct {
	svc        *Service
	buyerID    uuid.UUID
	consultant *consultantentity.Consultant
	job        *jobentity.Job
}

func newFixture() *fixture {
	buyerID := uuid.New()
	consultant := &consultantentity.Consultant{
		ID:     uuid.New(),
		UserID: uuid.New(),
	}
	job := &jobentity.Job{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  jobentity.StatusCompleted,
	}

	consultants := map[uuid.UUID]*consultantentity.Consultant{consultant.ID: consultant}
	repo := &fakeReviewRepo{
		reviews:     make(map[uuid.UUID]*entity.Review),
		consultants: consultants,
	}

	return &fixture{
		svc: New(repo,
			&fakeJobGetter{jobs: map[uuid.UUID]*jobentity.Job{job.ID: job}},
			&fakeConsultantGetter{consultants: consultants},
		),
		buyerID:    buyerID,
		consultant: consultant,
		job:        job,
	}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("submits feedback and refreshes the rating", func(t *testing.T) {
		fx := newFixture()

		review, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
			Rating: 4, Comment: "solid work",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, review.Rating)
		assert.Equal(t, 4.0, fx.consultant.Rating)
	})

	t.Run("rejects out of range ratings", func(t *testing.T) {
		fx := newFixture()

		for _, rating := range []int{0, 6, -1} {
			_, err := fx.svc.Create(ctx, CreateInput{
				JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
				Rating: rating, Comment: "x",
			})
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument), "rating %d", rating)
		}
	})

	t.Run("rejects reviews of unfinished jobs", func(t *testing.T) {
		fx := newFixture()
		fx.job.Status = jobentity.StatusInProgress

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
			Rating: 5, Comment: "too early",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
	})

	t.Run("only the job owner may review", func(t *testing.T) {
		fx := newFixture()

		_, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, BuyerID: uuid.New(), ConsultantID: fx.consultant.ID,
			Rating: 5, Comment: "not mine",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})

	t.Run("one review per buyer per job", func(t *testing.T) {
		fx := newFixture()

		in := CreateInput{
			JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
			Rating: 5, Comment: "great",
		}
		_, err := fx.svc.Create(ctx, in)
		require.NoError(t, err)

		_, err = fx.svc.Create(ctx, in)
		assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("the author may delete and the rating follows", func(t *testing.T) {
		fx := newFixture()

		review, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
			Rating: 2, Comment: "meh",
		})
		require.NoError(t, err)
		require.Equal(t, 2.0, fx.consultant.Rating)

		require.NoError(t, fx.svc.Delete(ctx, review.ID, fx.buyerID))
		assert.Equal(t, 0.0, fx.consultant.Rating)
	})

	t.Run("others may not delete", func(t *testing.T) {
		fx := newFixture()

		review, err := fx.svc.Create(ctx, CreateInput{
			JobID: fx.job.ID, BuyerID: fx.buyerID, ConsultantID: fx.consultant.ID,
			Rating: 3, Comment: "fine",
		})
		require.NoError(t, err)

		err = fx.svc.Delete(ctx, review.ID, uuid.New())
		assert.True(t, apperror.IsCode(err, apperror.CodePermissionDenied))
	})
}
