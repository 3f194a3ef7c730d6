// Package http exposes the dashboard, resume and register operations as a JSON API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Write sends the response. Encoding failures are logged; the status line is already sent.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "component", "http", "error", err)
	}
}

// ErrorResponse builds an APIError response.
func ErrorResponse(status int, msg string, details ...string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Body(APIError{Error: msg, Details: details})
}

func BadRequestError(msg string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, msg)
}

func ValidationError(msg string, details ...string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, msg, details...)
}

func InternalError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
