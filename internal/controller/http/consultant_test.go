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

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/service"
)

// stubConsultantService serves one canned consultant record
type stubConsultantService struct {
	consultant *entity.Consultant

	updatedID  uuid.UUID
	documentID uuid.UUID
	verifiedID uuid.UUID
	deletedID  uuid.UUID
}

func (s *stubConsultantService) Create(_ context.Context, in service.CreateInput) (*entity.Consultant, error) {
	return &entity.Consultant{ID: uuid.New(), UserID: in.UserID, Title: in.Title}, nil
}

func (s *stubConsultantService) List(_ context.Context, _ entity.ListFilter, page int) (*service.ListOutput, error) {
	return &service.ListOutput{Consultants: []entity.Consultant{}, Page: page}, nil
}

func (s *stubConsultantService) GetByID(_ context.Context, id uuid.UUID) (*entity.Consultant, error) {
	if s.consultant == nil || s.consultant.ID != id {
		return nil, apperror.NotFound("consultant not found")
	}
	return s.consultant, nil
}

func (s *stubConsultantService) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.Consultant, error) {
	if s.consultant != nil && s.consultant.UserID == userID {
		return s.consultant, nil
	}
	return nil, nil
}

func (s *stubConsultantService) Update(_ context.Context, id uuid.UUID, _ service.UpdateInput) (*entity.Consultant, error) {
	s.updatedID = id
	return s.consultant, nil
}

func (s *stubConsultantService) UploadDocuments(_ context.Context, id uuid.UUID, _ service.DocumentsInput) (*entity.Consultant, error) {
	s.documentID = id
	return s.consultant, nil
}

func (s *stubConsultantService) Verify(_ context.Context, id uuid.UUID) (*entity.Consultant, error) {
	if s.consultant == nil || s.consultant.ID != id {
		return nil, apperror.NotFound("consultant not found")
	}
	s.verifiedID = id
	return s.consultant, nil
}

func (s *stubConsultantService) Delete(_ context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

func newConsultantRouter(stub *stubConsultantService, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	NewConsultantHandler(stub, auth.Middleware(tokens)).RegisterRoutes(r)
	return r
}

func TestConsultantUpdateEndpoints(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	ownerID := uuid.New()
	consultant := &entity.Consultant{ID: uuid.New(), UserID: ownerID, Title: "Architect"}

	t.Run("owner updates through the id route", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/consultants/"+consultant.ID.String(), strings.NewReader(`{"title":"Lead"}`))
		req.Header.Set("Authorization", bearer(t, tokens, ownerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, consultant.ID, stub.updatedID)
	})

	t.Run("PUT works like PATCH on the id route", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPut, "/consultants/"+consultant.ID.String(), strings.NewReader(`{"title":"Lead"}`))
		req.Header.Set("Authorization", bearer(t, tokens, ownerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("someone else's profile is forbidden", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/consultants/"+consultant.ID.String(), strings.NewReader(`{"title":"Mine now"}`))
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, uuid.Nil, stub.updatedID)
	})

	t.Run("me route resolves the caller's record", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/consultants/me", strings.NewReader(`{"title":"Lead"}`))
		req.Header.Set("Authorization", bearer(t, tokens, ownerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, consultant.ID, stub.updatedID)
	})
}

func TestConsultantDocumentAndDeleteEndpoints(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	ownerID := uuid.New()
	consultant := &entity.Consultant{ID: uuid.New(), UserID: ownerID}

	t.Run("owner attaches documents through the id route", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/consultants/"+consultant.ID.String()+"/documents", strings.NewReader(`{"idCardFront":"front.png"}`))
		req.Header.Set("Authorization", bearer(t, tokens, ownerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, consultant.ID, stub.documentID)
	})

	t.Run("owner deletes through the id route", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodDelete, "/consultants/"+consultant.ID.String(), nil)
		req.Header.Set("Authorization", bearer(t, tokens, ownerID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, consultant.ID, stub.deletedID)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodDelete, "/consultants/"+consultant.ID.String(), nil)
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, uuid.Nil, stub.deletedID)
	})

	t.Run("verify route marks the consultant", func(t *testing.T) {
		stub := &stubConsultantService{consultant: consultant}
		router := newConsultantRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodPatch, "/consultants/"+consultant.ID.String()+"/verify", nil)
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, consultant.ID, stub.verifiedID)
	})
}
