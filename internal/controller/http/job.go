package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/job/entity"
	"github.com/expertraah/marketplace-api/internal/domain/job/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// JobService defines the interface for job posting operations
type JobService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Job, error)
	List(ctx context.Context, f entity.ListFilter, page int) (*service.ListOutput, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Job, error)
	Update(ctx context.Context, id, callerID uuid.UUID, in service.UpdateInput) (*entity.Job, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
}

// JobHandler handles HTTP requests for jobs
type JobHandler struct {
	service   JobService
	protected func(http.Handler) http.Handler
}

// NewJobHandler creates a new job handler
func NewJobHandler(s JobService, protected func(http.Handler) http.Handler) *JobHandler {
	return &JobHandler{service: s, protected: protected}
}

// RegisterRoutes registers job routes
func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.List())
		r.Get("/buyer/{buyerId}", h.ListByBuyer())
		r.Get("/{jobId}", h.GetByID())

		r.Group(func(r chi.Router) {
			r.Use(h.protected)
			r.Post("/", h.Create())
			r.Get("/my/posted", h.ListMine())
			r.Put("/{jobId}", h.Update())
			r.Patch("/{jobId}", h.Update())
			r.Delete("/{jobId}", h.Delete())
		})
	})
}

// CreateJobRequest represents the request body for posting a job
type CreateJobRequest struct {
	Category    string        `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Budget      entity.Budget `json:"budget"`
	Timeline    string        `json:"timeline"`
	Location    string        `json:"location"`
	Skills      []string      `json:"skills"`
	Attachments []string      `json:"attachments"`
}

// Create handles POST /jobs
func (h *JobHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req CreateJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		job, err := h.service.Create(r.Context(), service.CreateInput{
			BuyerID:     buyerID,
			Category:    req.Category,
			Title:       req.Title,
			Description: req.Description,
			Budget:      req.Budget,
			Timeline:    req.Timeline,
			Location:    req.Location,
			Skills:      req.Skills,
			Attachments: req.Attachments,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "job posted", job)
	}
}

// List handles GET /jobs
func (h *JobHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := entity.ListFilter{
			Category: q.Get("category"),
			Status:   entity.Status(q.Get("status")),
			Location: q.Get("location"),
		}

		if m := q.Get("minBudget"); m != "" {
			if parsed, err := strconv.ParseFloat(m, 64); err == nil && parsed >= 0 {
				filter.MinBudget = parsed
			}
		}
		if m := q.Get("maxBudget"); m != "" {
			if parsed, err := strconv.ParseFloat(m, 64); err == nil && parsed >= 0 {
				filter.MaxBudget = parsed
			}
		}

		if l := q.Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				filter.Limit = parsed
				if filter.Limit > 100 {
					filter.Limit = 100
				}
			}
		}

		page := 1
		if p := q.Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}

		result, err := h.service.List(r.Context(), filter, page)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "jobs retrieved", result)
	}
}

// GetByID handles GET /jobs/{jobId}
func (h *JobHandler) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobId"))
		if err != nil {
			response.BadRequest(w, "invalid job id")
			return
		}

		job, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "job retrieved", job)
	}
}

// ListMine handles GET /jobs/my/posted
func (h *JobHandler) ListMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		jobs, err := h.service.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "jobs retrieved", jobs)
	}
}

// ListByBuyer handles GET /jobs/buyer/{buyerId}
func (h *JobHandler) ListByBuyer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := uuid.Parse(chi.URLParam(r, "buyerId"))
		if err != nil {
			response.BadRequest(w, "invalid buyer id")
			return
		}

		jobs, err := h.service.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "jobs retrieved", jobs)
	}
}

// UpdateJobRequest represents partial job updates
type UpdateJobRequest struct {
	Category    *string        `json:"category"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Budget      *entity.Budget `json:"budget"`
	Timeline    *string        `json:"timeline"`
	Location    *string        `json:"location"`
	Skills      []string       `json:"skills"`
	Attachments []string       `json:"attachments"`
	Status      *string        `json:"status"`
}

// Update handles PUT and PATCH /jobs/{jobId}
func (h *JobHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "jobId"))
		if err != nil {
			response.BadRequest(w, "invalid job id")
			return
		}

		var req UpdateJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		in := service.UpdateInput{
			Category:    req.Category,
			Title:       req.Title,
			Description: req.Description,
			Budget:      req.Budget,
			Timeline:    req.Timeline,
			Location:    req.Location,
			Skills:      req.Skills,
			Attachments: req.Attachments,
		}
		if req.Status != nil {
			status := entity.Status(*req.Status)
			in.Status = &status
		}

		job, err := h.service.Update(r.Context(), id, callerID, in)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "job updated", job)
	}
}

// Delete handles DELETE /jobs/{jobId}
func (h *JobHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "jobId"))
		if err != nil {
			response.BadRequest(w, "invalid job id")
			return
		}

		if err := h.service.Delete(r.Context(), id, callerID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "job deleted", nil)
	}
}
