package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/entity"
	"github.com/expertraah/marketplace-api/internal/domain/proposal/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// ProposalService defines the interface for proposal operations
type ProposalService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Proposal, error)
	List(ctx context.Context, status entity.Status, page, limit int) (*service.ListOutput, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error)
	ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Proposal, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Proposal, error)
	Update(ctx context.Context, id, callerID uuid.UUID, in service.UpdateInput) (*entity.Proposal, error)
	Accept(ctx context.Context, id, callerID uuid.UUID) (*entity.Proposal, error)
	Reject(ctx context.Context, id, callerID uuid.UUID) (*entity.Proposal, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
}

// ProposalHandler handles HTTP requests for proposals
type ProposalHandler struct {
	service   ProposalService
	protected func(http.Handler) http.Handler
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(s ProposalService, protected func(http.Handler) http.Handler) *ProposalHandler {
	return &ProposalHandler{service: s, protected: protected}
}

// RegisterRoutes registers proposal routes
func (h *ProposalHandler) RegisterRoutes(r chi.Router) {
	r.Route("/proposals", func(r chi.Router) {
		r.Use(h.protected)

		r.Post("/", h.Create())
		r.Get("/", h.List())
		r.Get("/my/received", h.ListReceived())
		r.Get("/job/{jobId}", h.ListByJob())
		r.Get("/consultant/{consultantId}", h.ListByConsultant())
		r.Get("/buyer/{buyerId}", h.ListByBuyer())
		r.Get("/{proposalId}", h.GetByID())
		r.Put("/{proposalId}", h.Update())
		r.Patch("/{proposalId}", h.Update())
		r.Patch("/{proposalId}/accept", h.Accept())
		r.Patch("/{proposalId}/reject", h.Reject())
		r.Delete("/{proposalId}", h.Delete())
	})
}

// CreateProposalRequest represents the request body for submitting a bid
type CreateProposalRequest struct {
	JobID        string  `json:"jobId"`
	ConsultantID string  `json:"consultantId"`
	BidAmount    float64 `json:"bidAmount"`
	DeliveryTime string  `json:"deliveryTime"`
	CoverLetter  string  `json:"coverLetter"`
}

// Create handles POST /proposals
func (h *ProposalHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProposalRequest
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

		proposal, err := h.service.Create(r.Context(), service.CreateInput{
			JobID:        jobID,
			ConsultantID: consultantID,
			BidAmount:    req.BidAmount,
			DeliveryTime: req.DeliveryTime,
			CoverLetter:  req.CoverLetter,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "proposal submitted", proposal)
	}
}

// List handles GET /proposals
func (h *ProposalHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		status := entity.Status(q.Get("status"))

		page := 1
		if p := q.Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}

		limit := 20
		if l := q.Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
				if limit > 100 {
					limit = 100
				}
			}
		}

		result, err := h.service.List(r.Context(), status, page, limit)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposals retrieved", result)
	}
}

// GetByID handles GET /proposals/{proposalId}
func (h *ProposalHandler) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
		if err != nil {
			response.BadRequest(w, "invalid proposal id")
			return
		}

		proposal, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposal retrieved", proposal)
	}
}

// ListByJob handles GET /proposals/job/{jobId}
func (h *ProposalHandler) ListByJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
		if err != nil {
			response.BadRequest(w, "invalid job id")
			return
		}

		proposals, err := h.service.ListByJob(r.Context(), jobID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposals retrieved", proposals)
	}
}

// ListByConsultant handles GET /proposals/consultant/{consultantId}
func (h *ProposalHandler) ListByConsultant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultantID, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		proposals, err := h.service.ListByConsultant(r.Context(), consultantID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposals retrieved", proposals)
	}
}

// ListReceived handles GET /proposals/my/received, the bids on the
// authenticated buyer's jobs.
func (h *ProposalHandler) ListReceived() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		proposals, err := h.service.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposals retrieved", proposals)
	}
}

// ListByBuyer handles GET /proposals/buyer/{buyerId}
func (h *ProposalHandler) ListByBuyer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := uuid.Parse(chi.URLParam(r, "buyerId"))
		if err != nil {
			response.BadRequest(w, "invalid buyer id")
			return
		}

		proposals, err := h.service.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposals retrieved", proposals)
	}
}

// UpdateProposalRequest represents partial bid updates
type UpdateProposalRequest struct {
	BidAmount    *float64 `json:"bidAmount"`
	DeliveryTime *string  `json:"deliveryTime"`
	CoverLetter  *string  `json:"coverLetter"`
}

// Update handles PUT and PATCH /proposals/{proposalId}
func (h *ProposalHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
		if err != nil {
			response.BadRequest(w, "invalid proposal id")
			return
		}

		var req UpdateProposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		proposal, err := h.service.Update(r.Context(), id, callerID, service.UpdateInput{
			BidAmount:    req.BidAmount,
			DeliveryTime: req.DeliveryTime,
			CoverLetter:  req.CoverLetter,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposal updated", proposal)
	}
}

// Accept handles PATCH /proposals/{proposalId}/accept
func (h *ProposalHandler) Accept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
		if err != nil {
			response.BadRequest(w, "invalid proposal id")
			return
		}

		proposal, err := h.service.Accept(r.Context(), id, callerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposal accepted", proposal)
	}
}

// Reject handles PATCH /proposals/{proposalId}/reject
func (h *ProposalHandler) Reject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
		if err != nil {
			response.BadRequest(w, "invalid proposal id")
			return
		}

		proposal, err := h.service.Reject(r.Context(), id, callerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposal rejected", proposal)
	}
}

// Delete handles DELETE /proposals/{proposalId}
func (h *ProposalHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
		if err != nil {
			response.BadRequest(w, "invalid proposal id")
			return
		}

		if err := h.service.Delete(r.Context(), id, callerID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "proposal withdrawn", nil)
	}
}
