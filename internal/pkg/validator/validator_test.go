package validator

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

type periodRequest struct {
	Month  int    `json:"month" validate:"min=1,max=12"`
	Year   int    `json:"year" validate:"gte=2000,lte=9999"`
	Action string `json:"action" validate:"required,oneof=APPROVE REJECT"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(periodRequest{Month: 13, Year: 1999})
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	m := errs.ToMap()
	assert.Equal(t, "must be at most 12", m["month"])
	assert.Equal(t, "must be greater than or equal to 2000", m["year"])
	assert.Equal(t, "is required", m["action"])
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(periodRequest{Month: 1, Year: 2024, Action: "APPROVE"}))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "is required"},
		{Field: "year", Message: "is required"},
	}
	assert.Equal(t, "month: is required; year: is required", errs.Error())
}
