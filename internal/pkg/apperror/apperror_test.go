package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_MatchesClass(t *testing.T) {
	errThing := New(ErrNotFound, "thing not found")

	wrapped := fmt.Errorf("load thing: %w", errThing)

	assert.True(t, errors.Is(wrapped, errThing))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidStateTransition))
	assert.Equal(t, "thing not found", errThing.Error())
}
