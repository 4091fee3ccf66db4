package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/expertraah/marketplace-api/internal/httpx/response"
	"github.com/expertraah/marketplace-api/internal/storage"
)

// MaxUploadSize is the maximum allowed upload size (10MB)
const MaxUploadSize = 10 << 20

// DocumentUploader defines the interface for uploading documents
type DocumentUploader interface {
	Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadOutput, error)
}

// DocumentHandler handles document upload HTTP requests
type DocumentHandler struct {
	uploader  DocumentUploader
	protected func(http.Handler) http.Handler
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(uploader DocumentUploader, protected func(http.Handler) http.Handler) *DocumentHandler {
	return &DocumentHandler{uploader: uploader, protected: protected}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Use(h.protected)
		r.Post("/", h.Upload())
		// legacy path kept for clients that still call it
		r.Post("/upload", h.Upload())
	})
}

// UploadResponse represents the response from the upload endpoint
type UploadResponse struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Upload handles POST /documents
func (h *DocumentHandler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			response.BadRequest(w, "file too large or invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.BadRequest(w, "missing file in request")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !isAllowedDocumentType(contentType) {
			response.BadRequest(w, fmt.Sprintf("unsupported document type: %s", contentType))
			return
		}

		result, err := h.uploader.Upload(r.Context(), storage.UploadInput{
			Reader:      file,
			ContentType: contentType,
			Size:        header.Size,
			Filename:    header.Filename,
		})
		if err != nil {
			response.InternalError(w, "failed to upload file")
			return
		}

		response.Created(w, "document uploaded", UploadResponse{
			URL:  result.URL,
			Key:  result.Key,
			Size: result.Size,
		})
	}
}

// isAllowedDocumentType checks if the content type is allowed for upload
func isAllowedDocumentType(contentType string) bool {
	allowed := []string{
		"image/jpeg",
		"image/png",
		"image/webp",
		"application/pdf",
	}

	for _, a := range allowed {
		if strings.EqualFold(contentType, a) {
			return true
		}
	}
	return false
}
