package response

import (
	"encoding/json"
	"net/http"

	"github.com/expertraah/marketplace-api/internal/apperror"
)

// Envelope is the body shape every endpoint responds with
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// JSON sends an enveloped JSON response
func JSON(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{
		StatusCode: code,
		Message:    message,
		Data:       data,
	})
}

// OK sends a 200 OK response
func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, message, data)
}

// Created sends a 201 Created response
func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, message, data)
}

// Error sends an error response with an empty data field
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, message, nil)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// InternalError sends a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// Err maps a service error onto the wire. Application errors keep their
// message and status; anything else is reported as a plain 500.
func Err(w http.ResponseWriter, err error) {
	if appErr := apperror.From(err); appErr != nil {
		Error(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	InternalError(w, "internal server error")
}
