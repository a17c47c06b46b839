package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		message  string
		hasField string
	}{
		{
			name:     "field validation",
			err:      validator.ValidationErrors{{Field: "month", Message: "is required"}},
			status:   http.StatusUnprocessableEntity,
			code:     "VALIDATION_ERROR",
			message:  "Validation failed",
			hasField: "month",
		},
		{
			name:    "validation class",
			err:     fmt.Errorf("approve: %w", apperror.New(apperror.ErrValidation, "amount must be positive")),
			status:  http.StatusUnprocessableEntity,
			code:    "VALIDATION_ERROR",
			message: "approve: amount must be positive",
		},
		{
			name:    "not found",
			err:     apperror.New(apperror.ErrNotFound, "salary record not found"),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "salary record not found",
		},
		{
			name:    "invalid state",
			err:     apperror.New(apperror.ErrInvalidStateTransition, "salary record is not editable"),
			status:  http.StatusConflict,
			code:    "CONFLICT",
			message: "salary record is not editable",
		},
		{
			name:   "lock busy",
			err:    fmt.Errorf("acquire: %w", lock.ErrNotAcquired),
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:    "unexpected",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error.Message)
			}
			if tt.hasField != "" {
				assert.Contains(t, body.Error.Details, tt.hasField)
			}
		})
	}
}
