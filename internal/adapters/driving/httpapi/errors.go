package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidInput   = "invalid_input"
	CodeNotFound       = "not_found"
	CodeUnavailable    = "unavailable"
	CodeNotReady       = "not_ready"
	CodeNotImplemented = "not_implemented"
	CodeInternal       = "internal"
)

// APIError is the body of a failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope with a status derived from err.
func RespondError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if err != nil && status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// classify maps domain sentinels to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownTool):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable, CodeNotReady
	case errors.Is(err, domain.ErrRetrievalUnavailable),
		errors.Is(err, domain.ErrGenerationUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrVectorIndexUnavailable),
		errors.Is(err, domain.ErrSandboxUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented, CodeNotImplemented
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
