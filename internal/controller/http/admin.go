package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/domain/admin/service"
	consultantentity "github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// AdminService defines the interface for platform administration
type AdminService interface {
	ListUsers(ctx context.Context) ([]userentity.User, error)
	ListUsersByAccountType(ctx context.Context, accountType userentity.AccountType) ([]userentity.User, error)
	BanUser(ctx context.Context, userID uuid.UUID) (*userentity.User, error)
	UnbanUser(ctx context.Context, userID uuid.UUID) (*userentity.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	PendingConsultants(ctx context.Context) ([]consultantentity.Consultant, error)
	VerifyConsultant(ctx context.Context, consultantID uuid.UUID) (*consultantentity.Consultant, error)
	DeclineConsultant(ctx context.Context, consultantID uuid.UUID) (*consultantentity.Consultant, error)
	GetStats(ctx context.Context) (*service.Stats, error)
}

// AdminHandler handles HTTP requests for platform administration
type AdminHandler struct {
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(s AdminService) *AdminHandler {
	return &AdminHandler{service: s}
}

// RegisterRoutes registers admin routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", h.ListUsers())
		r.Get("/users/{accountType}", h.ListUsersByType())
		r.Patch("/users/{userId}/ban", h.BanUser())
		r.Patch("/users/{userId}/unban", h.UnbanUser())
		r.Delete("/users/{userId}", h.DeleteUser())

		r.Get("/consultants/pending", h.PendingConsultants())
		r.Patch("/consultants/{consultantId}/verify", h.VerifyConsultant())
		r.Patch("/consultants/{consultantId}/decline", h.DeclineConsultant())

		r.Get("/stats", h.GetStats())
	})
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if accountType := r.URL.Query().Get("accountType"); accountType != "" {
			users, err := h.service.ListUsersByAccountType(r.Context(), userentity.AccountType(accountType))
			if err != nil {
				response.Err(w, err)
				return
			}
			response.OK(w, "users retrieved", users)
			return
		}

		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "users retrieved", users)
	}
}

// ListUsersByType handles GET /admin/users/{accountType}
func (h *AdminHandler) ListUsersByType() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountType := userentity.AccountType(chi.URLParam(r, "accountType"))

		users, err := h.service.ListUsersByAccountType(r.Context(), accountType)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "users retrieved", users)
	}
}

// BanUser handles PATCH /admin/users/{userId}/ban
func (h *AdminHandler) BanUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		user, err := h.service.BanUser(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "user banned", user)
	}
}

// UnbanUser handles PATCH /admin/users/{userId}/unban
func (h *AdminHandler) UnbanUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		user, err := h.service.UnbanUser(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "user unbanned", user)
	}
}

// DeleteUser handles DELETE /admin/users/{userId}
func (h *AdminHandler) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		if err := h.service.DeleteUser(r.Context(), userID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "user deleted", nil)
	}
}

// PendingConsultants handles GET /admin/consultants/pending
func (h *AdminHandler) PendingConsultants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := h.service.PendingConsultants(r.Context())
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "pending consultants retrieved", pending)
	}
}

// VerifyConsultant handles PATCH /admin/consultants/{consultantId}/verify
func (h *AdminHandler) VerifyConsultant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultantID, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		consultant, err := h.service.VerifyConsultant(r.Context(), consultantID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "consultant verified", consultant)
	}
}

// DeclineConsultant handles PATCH /admin/consultants/{consultantId}/decline
func (h *AdminHandler) DeclineConsultant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consultantID, err := uuid.Parse(chi.URLParam(r, "consultantId"))
		if err != nil {
			response.BadRequest(w, "invalid consultant id")
			return
		}

		consultant, err := h.service.DeclineConsultant(r.Context(), consultantID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "consultant verification declined", consultant)
	}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.GetStats(r.Context())
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "platform stats retrieved", stats)
	}
}
