package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/messaging/entity"
	"github.com/expertraah/marketplace-api/internal/domain/messaging/service"
	"github.com/expertraah/marketplace-api/internal/httpx/response"
)

// MessageService defines the interface for direct messaging operations
type MessageService interface {
	CreateMessage(ctx context.Context, in service.CreateMessageInput) (*entity.Message, error)
	GetConversations(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error)
	GetMessages(ctx context.Context, userID, otherUserID uuid.UUID, page, limit int) (*service.GetMessagesOutput, error)
	MarkMessagesAsRead(ctx context.Context, userID, otherUserID uuid.UUID) error
	GetUnreadMessageCount(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteMessage(ctx context.Context, messageID, userID uuid.UUID) error
	SendContactMessage(ctx context.Context, data service.ContactData) (*entity.Message, error)
}

// MessageHandler handles HTTP requests for direct messages
type MessageHandler struct {
	service   MessageService
	protected func(http.Handler) http.Handler
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(s MessageService, protected func(http.Handler) http.Handler) *MessageHandler {
	return &MessageHandler{service: s, protected: protected}
}

// RegisterRoutes registers messaging routes
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.SendContactMessage())

	r.Route("/messages", func(r chi.Router) {
		r.Use(h.protected)

		r.Post("/", h.SendMessage())
		r.Get("/conversations", h.GetConversations())
		r.Get("/unread/count", h.GetUnreadCount())
		r.Get("/{otherUserId}", h.GetMessages())
		r.Patch("/{otherUserId}/read", h.MarkAsRead())
		r.Delete("/message/{messageId}", h.DeleteMessage())
	})
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	ReceiverID  string   `json:"receiverId"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// SendMessage handles POST /messages
func (h *MessageHandler) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			response.BadRequest(w, "invalid receiver id")
			return
		}

		msg, err := h.service.CreateMessage(r.Context(), service.CreateMessageInput{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Content:     req.Content,
			Attachments: req.Attachments,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "message sent", msg)
	}
}

// GetConversations handles GET /messages/conversations
func (h *MessageHandler) GetConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		conversations, err := h.service.GetConversations(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "conversations retrieved", conversations)
	}
}

// GetMessages handles GET /messages/{otherUserId}
func (h *MessageHandler) GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		otherUserID, err := uuid.Parse(chi.URLParam(r, "otherUserId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}

		limit := service.DefaultPageSize
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
				if limit > 100 {
					limit = 100
				}
			}
		}

		result, err := h.service.GetMessages(r.Context(), userID, otherUserID, page, limit)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "messages retrieved", result)
	}
}

// MarkAsRead handles PATCH /messages/{otherUserId}/read
func (h *MessageHandler) MarkAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		otherUserID, err := uuid.Parse(chi.URLParam(r, "otherUserId"))
		if err != nil {
			response.BadRequest(w, "invalid user id")
			return
		}

		if err := h.service.MarkMessagesAsRead(r.Context(), userID, otherUserID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "messages marked as read", nil)
	}
}

// UnreadCountResponse represents the response for the unread total
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// GetUnreadCount handles GET /messages/unread/count
func (h *MessageHandler) GetUnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		count, err := h.service.GetUnreadMessageCount(r.Context(), userID)
		if err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "unread count retrieved", UnreadCountResponse{Count: count})
	}
}

// DeleteMessage handles DELETE /messages/message/{messageId}
func (h *MessageHandler) DeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		messageID, err := uuid.Parse(chi.URLParam(r, "messageId"))
		if err != nil {
			response.BadRequest(w, "invalid message id")
			return
		}

		if err := h.service.DeleteMessage(r.Context(), messageID, userID); err != nil {
			response.Err(w, err)
			return
		}

		response.OK(w, "message deleted", nil)
	}
}

// ContactRequest represents the request body of the public contact form
type ContactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// SendContactMessage handles POST /contact
func (h *MessageHandler) SendContactMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.Email == "" {
			response.BadRequest(w, "email is required")
			return
		}
		if req.Message == "" {
			response.BadRequest(w, "message is required")
			return
		}

		msg, err := h.service.SendContactMessage(r.Context(), service.ContactData{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Message:   req.Message,
		})
		if err != nil {
			response.Err(w, err)
			return
		}

		response.Created(w, "contact message delivered", msg)
	}
}
