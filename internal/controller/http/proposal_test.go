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
	"github.com/expertraah/marketplace-api/internal/domain/proposal/entity"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/service"
)

// stubProposalService records which operations were reached
type stubProposalService struct {
	listedBuyerID uuid.UUID
	updatedID     uuid.UUID
}

func (s *stubProposalService) Create(_ context.Context, in service.CreateInput) (*entity.Proposal, error) {
	return &entity.Proposal{ID: uuid.New(), JobID: in.JobID, ConsultantID: in.ConsultantID}, nil
}

func (s *stubProposalService) List(_ context.Context, _ entity.Status, page, limit int) (*service.ListOutput, error) {
	return &service.ListOutput{Proposals: []entity.Proposal{}, Page: page, Limit: limit}, nil
}

func (s *stubProposalService) GetByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return &entity.Proposal{ID: id}, nil
}

func (s *stubProposalService) ListByJob(_ context.Context, _ uuid.UUID) ([]entity.Proposal, error) {
	return []entity.Proposal{}, nil
}

func (s *stubProposalService) ListByConsultant(_ context.Context, _ uuid.UUID) ([]entity.Proposal, error) {
	return []entity.Proposal{}, nil
}

func (s *stubProposalService) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]entity.Proposal, error) {
	s.listedBuyerID = buyerID
	return []entity.Proposal{}, nil
}

func (s *stubProposalService) Update(_ context.Context, id, _ uuid.UUID, _ service.UpdateInput) (*entity.Proposal, error) {
	s.updatedID = id
	return &entity.Proposal{ID: id}, nil
}

func (s *stubProposalService) Accept(_ context.Context, id, _ uuid.UUID) (*entity.Proposal, error) {
	return &entity.Proposal{ID: id}, nil
}

func (s *stubProposalService) Reject(_ context.Context, id, _ uuid.UUID) (*entity.Proposal, error) {
	return &entity.Proposal{ID: id}, nil
}

func (s *stubProposalService) Delete(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func newProposalRouter(stub *stubProposalService, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	NewProposalHandler(stub, auth.Middleware(tokens)).RegisterRoutes(r)
	return r
}

func TestProposalsByBuyerEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("lists the bids on a buyer's jobs", func(t *testing.T) {
		stub := &stubProposalService{}
		router := newProposalRouter(stub, tokens)
		buyerID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/proposals/buyer/"+buyerID.String(), nil)
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, buyerID, stub.listedBuyerID)
	})

	t.Run("requires authentication", func(t *testing.T) {
		stub := &stubProposalService{}
		router := newProposalRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodGet, "/proposals/buyer/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProposalUpdateEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	proposalID := uuid.New()

	t.Run("PUT edits the bid", func(t *testing.T) {
		stub := &stubProposalService{}
		router := newProposalRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPut, "/proposals/"+proposalID.String(), strings.NewReader(`{"bidAmount":750}`))
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, proposalID, stub.updatedID)
	})

	t.Run("PATCH reaches the same handler", func(t *testing.T) {
		stub := &stubProposalService{}
		router := newProposalRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/proposals/"+proposalID.String(), strings.NewReader(`{"bidAmount":750}`))
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, proposalID, stub.updatedID)
	})
}
