package api

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// badRequestErrors are caller mistakes reported as 400.
var badRequestErrors = []error{
	domain.ErrInvalidRequest,
	domain.ErrMissingSource,
	domain.ErrUnsupportedSourceType,
	domain.ErrEncoding,
	domain.ErrMissingQueryOrTable,
	domain.ErrEmptyQuestion,
	domain.ErrTableNotFound,
}

// statusFor maps a core error onto an HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrFileNotFound) {
		return http.StatusNotFound
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// detailFor renders the message for a failed operation.
// Server errors carry the operation name so logs and clients can tell them apart.
func detailFor(op string, status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "File not found: " + err.Error()
	case http.StatusInternalServerError:
		return "Error during " + op + ": " + err.Error()
	default:
		return err.Error()
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}
