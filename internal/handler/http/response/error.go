package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
	case errors.Is(err, apperror.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, apperror.ErrInvalidStateTransition):
		Conflict(w, err.Error())
	case errors.Is(err, lock.ErrNotAcquired):
		Conflict(w, "Resource is busy, retry later")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
