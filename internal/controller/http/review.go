package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/review/entity"
	"github.com/expertraah/marketplace-api/internal/domain/review/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// ReviewService defines the interface for review operations
type ReviewService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Review, error)
	ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Review, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service   ReviewService
	protected func(http.Handler) http.Handler
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(s ReviewService, protected func(http.Handler) http.Handler) *ReviewHandler {
	return &ReviewHandler{service: s, protected: protected}
}

// RegisterRoutes registers review routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/consultant/{consultantId}", h.ListByConsultant())

		r.Group(func(r chi.Router) {
			r.Use(h.protected)
			r.Post("/", h.Create())
			r.Delete("/{reviewId}", h.Delete())
		})
	})
}

// CreateReviewRequest represents the request body for submitting a review
type CreateReviewRequest struct {
	JobID        string `json:"jobId"`
	ConsultantID string `json:"consultantId"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// Create handles POST /reviews
func (h *ReviewHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req CreateReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		jobID, err := uuid.Parse(req.JobID)
		if err != nil {
			response.BadRequest(w, "invalid job id")
			return
		}
		consultantID, err := uuid.Parse(req.ConsultantID)
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		review, err := h.service.Create(r.Context(), service.CreateInput{
			JobID:        jobID,
			BuyerID:      buyerID,
			ConsultantID: consultantID,
			Rating:       req.Rating,
			Comment:      req.Comment,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "review submitted", review)
	}
}

// ListByConsultant handles GET /reviews/consultant/{consultantId}
func (h *ReviewHandler) ListByConsultant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultantID, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		reviews, err := h.service.ListByConsultant(r.Context(), consultantID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "reviews retrieved", reviews)
	}
}

// Delete handles DELETE /reviews/{reviewId}
func (h *ReviewHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
		if err != nil {
			response.BadRequest(w, "invalid review id")
			return
		}

		if err := h.service.Delete(r.Context(), id, callerID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "review deleted", nil)
	}
}
