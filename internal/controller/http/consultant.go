package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	"github.com/expertraah/marketplace-api/internal/domain/consultant/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// ConsultantService defines the interface for consultant profile operations
type ConsultantService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Consultant, error)
	List(ctx context.Context, f entity.ListFilter, page int) (*service.ListOutput, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Consultant, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateInput) (*entity.Consultant, error)
	UploadDocuments(ctx context.Context, id uuid.UUID, in service.DocumentsInput) (*entity.Consultant, error)
	Verify(ctx context.Context, id uuid.UUID) (*entity.Consultant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConsultantHandler handles HTTP requests for consultants
type ConsultantHandler struct {
	service   ConsultantService
	protected func(http.Handler) http.Handler
}

// NewConsultantHandler creates a new consultant handler
func NewConsultantHandler(s ConsultantService, protected func(http.Handler) http.Handler) *ConsultantHandler {
	return &ConsultantHandler{service: s, protected: protected}
}

// RegisterRoutes registers consultant routes
func (h *ConsultantHandler) RegisterRoutes(r chi.Router) {
	r.Route("/consultants", func(r chi.Router) {
		r.Get("/", h.List())
		r.Get("/user/{userId}", h.GetByUserID())
		r.Get("/{consultantId}", h.GetByID())

		r.Group(func(r chi.Router) {
			r.Use(h.protected)
			r.Post("/", h.Create())
			// "me" routes resolve the caller's own record
			r.Patch("/me", h.Update())
			r.Post("/me/documents", h.UploadDocuments())
			r.Delete("/me", h.Delete())
			// id routes serve clients that address the record directly
			r.Patch("/{consultantId}/verify", h.Verify())
			r.Patch("/{consultantId}/documents", h.UploadDocumentsByID())
			r.Put("/{consultantId}", h.UpdateByID())
			r.Patch("/{consultantId}", h.UpdateByID())
			r.Delete("/{consultantId}", h.DeleteByID())
		})
	})
}

// CreateConsultantRequest represents the request body for consultant creation
type CreateConsultantRequest struct {
	Title          string   `json:"title"`
	Bio            string   `json:"bio"`
	Specialization []string `json:"specialization"`
	HourlyRate     float64  `json:"hourlyRate"`
	Experience     string   `json:"experience"`
	Skills         []string `json:"skills"`
}

// Create handles POST /consultants
func (h *ConsultantHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req CreateConsultantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		consultant, err := h.service.Create(r.Context(), service.CreateInput{
			UserID:         userID,
			Title:          req.Title,
			Bio:            req.Bio,
			Specialization: req.Specialization,
			HourlyRate:     req.HourlyRate,
			Experience:     req.Experience,
			Skills:         req.Skills,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "consultant profile created", consultant)
	}
}

// List handles GET /consultants
func (h *ConsultantHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := entity.ListFilter{
			Specialization: q.Get("specialization"),
			Availability:   entity.Availability(q.Get("availability")),
			VerifiedOnly:   q.Get("verified") == "true",
		}

		if m := q.Get("minRating"); m != "" {
			if parsed, err := strconv.ParseFloat(m, 64); err == nil && parsed >= 0 {
				filter.MinRating = parsed
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

		response.OK(w, "consultants retrieved", result)
	}
}

// GetByID handles GET /consultants/{consultantId}
func (h *ConsultantHandler) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		consultant, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "consultant retrieved", consultant)
	}
}

// GetByUserID handles GET /consultants/user/{userId}
func (h *ConsultantHandler) GetByUserID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		consultant, err := h.service.GetByUserID(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		// A user without a consultant record is a normal state
		response.OK(w, "consultant retrieved", consultant)
	}
}

// UpdateConsultantRequest represents partial consultant updates
type UpdateConsultantRequest struct {
	Title          *string  `json:"title"`
	Bio            *string  `json:"bio"`
	Specialization []string `json:"specialization"`
	HourlyRate     *float64 `json:"hourlyRate"`
	Availability   *string  `json:"availability"`
	Experience     *string  `json:"experience"`
	Skills         []string `json:"skills"`
}

// Update handles PATCH /consultants/me
func (h *ConsultantHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.callerConsultant(w, r)
		if !ok {
			return
		}
		h.applyUpdate(w, r, consultant)
	}
}

// UpdateByID handles PUT and PATCH /consultants/{consultantId}
func (h *ConsultantHandler) UpdateByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.ownedConsultant(w, r)
		if !ok {
			return
		}
		h.applyUpdate(w, r, consultant)
	}
}

func (h *ConsultantHandler) applyUpdate(w http.ResponseWriter, r *http.Request, consultant *entity.Consultant) {
	var req UpdateConsultantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	in := service.UpdateInput{
		Title:          req.Title,
		Bio:            req.Bio,
		Specialization: req.Specialization,
		HourlyRate:     req.HourlyRate,
		Experience:     req.Experience,
		Skills:         req.Skills,
	}
	if req.Availability != nil {
		availability := entity.Availability(*req.Availability)
		in.Availability = &availability
	}

	updated, err := h.service.Update(r.Context(), consultant.ID, in)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.OK(w, "consultant profile updated", updated)
}

// UploadDocumentsRequest carries verification document URLs
type UploadDocumentsRequest struct {
	IDCardFront         string   `json:"idCardFront"`
	IDCardBack          string   `json:"idCardBack"`
	SupportingDocuments []string `json:"supportingDocuments"`
}

// UploadDocuments handles POST /consultants/me/documents
func (h *ConsultantHandler) UploadDocuments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.callerConsultant(w, r)
		if !ok {
			return
		}
		h.applyDocuments(w, r, consultant)
	}
}

// UploadDocumentsByID handles PATCH /consultants/{consultantId}/documents
func (h *ConsultantHandler) UploadDocumentsByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.ownedConsultant(w, r)
		if !ok {
			return
		}
		h.applyDocuments(w, r, consultant)
	}
}

func (h *ConsultantHandler) applyDocuments(w http.ResponseWriter, r *http.Request, consultant *entity.Consultant) {
	var req UploadDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	updated, err := h.service.UploadDocuments(r.Context(), consultant.ID, service.DocumentsInput{
		IDCardFront:         req.IDCardFront,
		IDCardBack:          req.IDCardBack,
		SupportingDocuments: req.SupportingDocuments,
	})
	if err != nil {
		response.Err(w, err)
		return
	}

	response.OK(w, "documents uploaded", updated)
}

// Verify handles PATCH /consultants/{consultantId}/verify. The admin
// surface exposes the same operation; this route serves clients that
// address consultants directly.
func (h *ConsultantHandler) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		verified, err := h.service.Verify(r.Context(), id)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "consultant verified", verified)
	}
}

// Delete handles DELETE /consultants/me
func (h *ConsultantHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.callerConsultant(w, r)
		if !ok {
			return
		}
		h.applyDelete(w, r, consultant)
	}
}

// DeleteByID handles DELETE /consultants/{consultantId}
func (h *ConsultantHandler) DeleteByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultant, ok := h.ownedConsultant(w, r)
		if !ok {
			return
		}
		h.applyDelete(w, r, consultant)
	}
}

func (h *ConsultantHandler) applyDelete(w http.ResponseWriter, r *http.Request, consultant *entity.Consultant) {
	if err := h.service.Delete(r.Context(), consultant.ID); err != nil {
		response.Err(w, err)
		return
	}

	response.OK(w, "consultant profile deleted", nil)
}

// callerConsultant resolves the authenticated user's consultant record,
// writing the error response itself when there is none.
func (h *ConsultantHandler) callerConsultant(w http.ResponseWriter, r *http.Request) (*entity.Consultant, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return nil, false
	}

	consultant, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		response.Err(w, err)
		return nil, false
	}
	if consultant == nil {
		response.NotFound(w, "consultant profile not found")
		return nil, false
	}
	return consultant, true
}

// ownedConsultant resolves the consultant addressed by the path and checks
// that it belongs to the authenticated user, writing the error response
// itself otherwise.
func (h *ConsultantHandler) ownedConsultant(w http.ResponseWriter, r *http.Request) (*entity.Consultant, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "consultantId"))
	if err != nil {
		response.BadRequest(w, "invalid consultant id")
		return nil, false
	}

	consultant, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.Err(w, err)
		return nil, false
	}
	if consultant.UserID != userID {
		response.Error(w, http.StatusForbidden, "not your consultant profile")
		return nil, false
	}
	return consultant, true
}
