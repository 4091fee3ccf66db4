package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/storage"
)

// stubUploader captures the last upload
type stubUploader struct {
	lastInput storage.UploadInput
}

func (s *stubUploader) Upload(_ context.Context, in storage.UploadInput) (*storage.UploadOutput, error) {
	s.lastInput = in
	return &storage.UploadOutput{
		Key:  "documents/" + in.Filename,
		URL:  "https://cdn.example.com/documents/" + in.Filename,
		Size: in.Size,
	}, nil
}

func newDocumentRouter(stub *stubUploader, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	NewDocumentHandler(stub, auth.Middleware(tokens)).RegisterRoutes(r)
	return r
}

func multipartFile(t *testing.T, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="id.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestDocumentUploadEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	t.Run("uploads through the documents root", func(t *testing.T) {
		stub := &stubUploader{}
		router := newDocumentRouter(stub, tokens)

		body, contentType := multipartFile(t, "image/png")
		req := httptest.NewRequest(http.MethodPost, "/documents/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "id.png", stub.lastInput.Filename)

		envelope := decodeEnvelope(t, rec)
		data, ok := envelope["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/documents/id.png", data["url"])
	})

	t.Run("the legacy upload path still serves", func(t *testing.T) {
		stub := &stubUploader{}
		router := newDocumentRouter(stub, tokens)

		body, contentType := multipartFile(t, "application/pdf")
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("rejects disallowed content types", func(t *testing.T) {
		stub := &stubUploader{}
		router := newDocumentRouter(stub, tokens)

		body, contentType := multipartFile(t, "application/x-msdownload")
		req := httptest.NewRequest(http.MethodPost, "/documents/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearer(t, tokens, userID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		stub := &stubUploader{}
		router := newDocumentRouter(stub, tokens)

		body, contentType := multipartFile(t, "image/png")
		req := httptest.NewRequest(http.MethodPost, "/documents/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
