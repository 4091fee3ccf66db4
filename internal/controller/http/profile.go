package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/user/entity"
	"github.com/expertraah/marketplace-api/internal/domain/user/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// ProfileService defines the interface for user profile operations
type ProfileService interface {
	CreateProfile(ctx context.Context, in service.CreateProfileInput) (*entity.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (*entity.Profile, error)
	AddVerificationDocs(ctx context.Context, userID uuid.UUID, docs []string) (*entity.Profile, error)
}

// ProfileHandler handles HTTP requests for user profiles
type ProfileHandler struct {
	service   ProfileService
	protected func(http.Handler) http.Handler
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(s ProfileService, protected func(http.Handler) http.Handler) *ProfileHandler {
	return &ProfileHandler{service: s, protected: protected}
}

// RegisterRoutes registers profile routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/{userId}", h.GetProfile())

		r.Group(func(r chi.Router) {
			r.Use(h.protected)
			r.Post("/", h.CreateProfile())
			r.Patch("/", h.UpdateProfile())
			r.Post("/verification-docs", h.AddVerificationDocs())
		})
	})
}

// CreateProfileRequest represents the request body for profile creation
type CreateProfileRequest struct {
	Fullname       string   `json:"fullname"`
	Bio            string   `json:"bio"`
	ContactNumber  string   `json:"contactNumber"`
	PortfolioLinks []string `json:"portfolioLinks"`
}

// CreateProfile handles POST /profiles
func (h *ProfileHandler) CreateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req CreateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		profile, err := h.service.CreateProfile(r.Context(), service.CreateProfileInput{
			UserID:         userID,
			Fullname:       req.Fullname,
			Bio:            req.Bio,
			ContactNumber:  req.ContactNumber,
			PortfolioLinks: req.PortfolioLinks,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "profile created", profile)
	}
}

// GetProfile handles GET /profiles/{userId}
func (h *ProfileHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		profile, err := h.service.GetProfile(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "profile retrieved", profile)
	}
}

// UpdateProfileRequest represents the request body for partial profile updates
type UpdateProfileRequest struct {
	Fullname       *string  `json:"fullname"`
	Bio            *string  `json:"bio"`
	ContactNumber  *string  `json:"contactNumber"`
	PortfolioLinks []string `json:"portfolioLinks"`
}

// UpdateProfile handles PATCH /profiles
func (h *ProfileHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		profile, err := h.service.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
			Fullname:       req.Fullname,
			Bio:            req.Bio,
			ContactNumber:  req.ContactNumber,
			PortfolioLinks: req.PortfolioLinks,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "profile updated", profile)
	}
}

// VerificationDocsRequest represents the request body for attaching documents
type VerificationDocsRequest struct {
	Documents []string `json:"documents"`
}

// AddVerificationDocs handles POST /profiles/verification-docs
func (h *ProfileHandler) AddVerificationDocs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req VerificationDocsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if len(req.Documents) == 0 {
			response.BadRequest(w, "documents are required")
			return
		}

		profile, err := h.service.AddVerificationDocs(r.Context(), userID, req.Documents)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "verification documents added", profile)
	}
}
