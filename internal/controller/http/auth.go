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

// AuthService defines the interface for account authentication
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthOutput, error)
	Login(ctx context.Context, email, password string) (*service.AuthOutput, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	service   AuthService
	protected func(http.Handler) http.Handler
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(s AuthService, protected func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{service: s, protected: protected}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register())
		r.Post("/login", h.Login())

		r.Group(func(r chi.Router) {
			r.Use(h.protected)
			r.Post("/change-password", h.ChangePassword())
		})
	})
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
	Phone       string `json:"phone"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.Name == "" {
			response.BadRequest(w, "name is required")
			return
		}
		if req.Email == "" {
			response.BadRequest(w, "email is required")
			return
		}

		result, err := h.service.Register(r.Context(), service.RegisterInput{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			AccountType: entity.AccountType(req.AccountType),
			Phone:       req.Phone,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "account created", result)
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.Email == "" || req.Password == "" {
			response.BadRequest(w, "email and password are required")
			return
		}

		result, err := h.service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "login successful", result)
	}
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.CurrentPassword == "" || req.NewPassword == "" {
			response.BadRequest(w, "current and new password are required")
			return
		}

		if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "password updated", nil)
	}
}
