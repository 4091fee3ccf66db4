package http

import (
	"context"
	"encoding/json"
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
	"github.com/expertraah/marketplace-api/internal/domain/messaging/entity"
	"github.com/expertraah/marketplace-api/internal/domain/messaging/service"
)

// stubMessageService returns canned values per method
type stubMessageService struct {
	createErr   error
	deleteErr   error
	markReadErr error
	unread      int64
	lastInput   service.CreateMessageInput
}

func (s *stubMessageService) CreateMessage(_ context.Context, in service.CreateMessageInput) (*entity.Message, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastInput = in
	return &entity.Message{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		CreatedAt:      time.Now(),
	}, nil
}

func (s *stubMessageService) GetConversations(_ context.Context, _ uuid.UUID) ([]entity.Conversation, error) {
	return []entity.Conversation{}, nil
}

func (s *stubMessageService) GetMessages(_ context.Context, _, _ uuid.UUID, page, limit int) (*service.GetMessagesOutput, error) {
	return &service.GetMessagesOutput{
		Messages:   []entity.Message{},
		Pagination: service.Pagination{Page: page, Limit: limit},
	}, nil
}

func (s *stubMessageService) MarkMessagesAsRead(_ context.Context, _, _ uuid.UUID) error {
	return s.markReadErr
}

func (s *stubMessageService) GetUnreadMessageCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.unread, nil
}

func (s *stubMessageService) DeleteMessage(_ context.Context, _, _ uuid.UUID) error {
	return s.deleteErr
}

func (s *stubMessageService) SendContactMessage(_ context.Context, data service.ContactData) (*entity.Message, error) {
	return &entity.Message{ID: uuid.New(), Content: data.Message, CreatedAt: time.Now()}, nil
}

func newMessageRouter(stub *stubMessageService, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	NewMessageHandler(stub, auth.Middleware(tokens)).RegisterRoutes(r)
	return r
}

func bearer(t *testing.T, tokens *auth.TokenManager, userID uuid.UUID) string {
	t.Helper()
	token, err := tokens.Issue(userID, "buyer")
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSendMessageEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	t.Run("sends a message", func(t *testing.T) {
		stub := &stubMessageService{}
		router := newMessageRouter(stub, tokens)

		receiverID := uuid.New()
		payload := `{"receiverId":"` + receiverID.String() + `","content":"hello"}`
		req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(payload))
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, userID, stub.lastInput.SenderID)
		assert.Equal(t, receiverID, stub.lastInput.ReceiverID)
		assert.Equal(t, "hello", stub.lastInput.Content)
	})

	t.Run("requires authentication", func(t *testing.T) {
		router := newMessageRouter(&stubMessageService{}, tokens)

		req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a malformed receiver id", func(t *testing.T) {
		router := newMessageRouter(&stubMessageService{}, tokens)

		req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(`{"receiverId":"nope","content":"x"}`))
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps service errors onto status codes", func(t *testing.T) {
		stub := &stubMessageService{createErr: apperror.NotFound("user not found")}
		router := newMessageRouter(stub, tokens)

		payload := `{"receiverId":"` + uuid.NewString() + `","content":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(payload))
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "user not found", body["message"])
	})
}

func TestUnreadCountEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	stub := &stubMessageService{unread: 7}
	router := newMessageRouter(stub, tokens)

	req := httptest.NewRequest(http.MethodGet, "/messages/unread/count", nil)
	req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["count"])
}

func TestDeleteMessageEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("forbidden for non-senders", func(t *testing.T) {
		stub := &stubMessageService{deleteErr: apperror.PermissionDenied("unauthorized to delete this message")}
		router := newMessageRouter(stub, tokens)

		req := httptest.NewRequest(http.MethodDelete, "/messages/message/"+uuid.NewString(), nil)
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("deletes for the sender", func(t *testing.T) {
		router := newMessageRouter(&stubMessageService{}, tokens)

		req := httptest.NewRequest(http.MethodDelete, "/messages/message/"+uuid.NewString(), nil)
		req.Header.Set("Authorization", bearer(t, tokens, uuid.New()))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestContactEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newMessageRouter(&stubMessageService{}, tokens)

	t.Run("accepts anonymous submissions", func(t *testing.T) {
		payload := `{"firstName":"Jane","email":"jane@example.com","message":"help"}`
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(payload))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("requires email and message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"firstName":"Jane"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
