package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/job/entity"
	"github.com/expertraah/marketplace-api/internal/domain/job/service"
)

// stubJobService records which operations were reached
type stubJobService struct {
	listedBuyerID uuid.UUID
	updatedID     uuid.UUID
	updatedCaller uuid.UUID
}

func (s *stubJobService) Create(_ context.Context, in service.CreateInput) (*entity.Job, error) {
	return &entity.Job{ID: uuid.New(), BuyerID: in.BuyerID, Title: in.Title}, nil
}

func (s *stubJobService) List(_ context.Context, _ entity.ListFilter, page int) (*service.ListOutput, error) {
	return &service.ListOutput{Jobs: []entity.Job{}, Page: page}, nil
}

func (s *stubJobService) GetByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	return &entity.Job{ID: id}, nil
}

func (s *stubJobService) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]entity.Job, error) {
	s.listedBuyerID = buyerID
	return []entity.Job{{ID: uuid.New(), BuyerID: buyerID}}, nil
}

func (s *stubJobService) Update(_ context.Context, id, callerID uuid.UUID, _ service.UpdateInput) (*entity.Job, error) {
	s.updatedID = id
	s.updatedCaller = callerID
	return &entity.Job{ID: id, BuyerID: callerID}, nil
}

func (s *stubJobService) Delete(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func newJobRouter(stub *stubJobService, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	NewJobHandler(stub, auth.Middleware(tokens)).RegisterRoutes(r)
	return r
}

func TestJobsByBuyerEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("lists a buyer's postings without authentication", func(t *testing.T) {
		stub := &stubJobService{}
		router := newJobRouter(stub, tokens)
		buyerID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/jobs/buyer/"+buyerID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, buyerID, stub.listedBuyerID)
	})

	t.Run("rejects a malformed buyer id", func(t *testing.T) {
		stub := &stubJobService{}
		router := newJobRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodGet, "/jobs/buyer/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJobUpdateEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	callerID := uuid.New()
	jobID := uuid.New()

	t.Run("PUT updates the job", func(t *testing.T) {
		stub := &stubJobService{}
		router := newJobRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPut, "/jobs/"+jobID.String(), strings.NewReader(`{"title":"Refined title"}`))
		req.Header.Set("Authorization", bearer(t, tokens, callerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, jobID, stub.updatedID)
		assert.Equal(t, callerID, stub.updatedCaller)
	})

	t.Run("PATCH reaches the same handler", func(t *testing.T) {
		stub := &stubJobService{}
		router := newJobRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/jobs/"+jobID.String(), strings.NewReader(`{"title":"Refined title"}`))
		req.Header.Set("Authorization", bearer(t, tokens, callerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, jobID, stub.updatedID)
	})

	t.Run("PUT without a token is unauthorized", func(t *testing.T) {
		stub := &stubJobService{}
		router := newJobRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPut, "/jobs/"+jobID.String(), strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
