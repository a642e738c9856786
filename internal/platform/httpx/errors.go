// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unknown errors are logged and answered with an empty 500.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var fieldErr *shared.FieldError
	switch {
	case errors.As(err, &fieldErr):
		status, title := http.StatusBadRequest, "Validation Failed"
		if errors.Is(fieldErr.Kind, shared.ErrDuplicate) {
			status, title = http.StatusConflict, "Duplicate"
		}
		JSON(w, status, ProblemDetail{
			Title:  title,
			Status: status,
			Detail: fieldErr.Message(),
			Errors: fieldErr.Fields,
		})
	case errors.Is(err, shared.ErrAuthenticationMissing), errors.Is(err, shared.ErrAuthenticationInvalid):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrAuthorizationDenied):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrResetTokenInvalid), errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
