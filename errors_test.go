package youte_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/youte"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := youte.Errorf(youte.ENOTFOUND, "run %q not found", "abc")

	assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
	assert.Equal(t, `run "abc" not found`, youte.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	err := youte.WrapError(youte.EINTERRUPTED, context.Canceled, "run %s interrupted", "abc")

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, youte.IsInterrupted(err))
	assert.Contains(t, err.Error(), "code=interrupted")
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, youte.ErrorCode(nil))
		assert.Empty(t, youte.ErrorMessage(nil))
	})

	t.Run("walks wrap chains", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("fetch page: %w", youte.Errorf(youte.EQUOTA, "quota exceeded"))
		assert.Equal(t, youte.EQUOTA, youte.ErrorCode(err))
		assert.Equal(t, "quota exceeded", youte.ErrorMessage(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")
		assert.Equal(t, youte.EINTERNAL, youte.ErrorCode(err))
		assert.Equal(t, "Internal error", youte.ErrorMessage(err))
		assert.False(t, youte.IsInterrupted(err))
	})
}
