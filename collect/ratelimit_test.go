package collect_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer(t *testing.T) {
	t.Parallel()

	t.Run("implements youte.Pacer interface", func(t *testing.T) {
		t.Parallel()
		var _ youte.Pacer = collect.NewPacer(1)
	})

	t.Run("spaces consecutive requests", func(t *testing.T) {
		t.Parallel()

		pacer := collect.NewPacer(10) // 100ms between requests

		require.NoError(t, pacer.Wait(context.Background()))

		start := time.Now()
		err := pacer.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	})

	t.Run("non-positive rate disables pacing", func(t *testing.T) {
		t.Parallel()

		pacer := collect.NewPacer(0)
		start := time.Now()
		for range 5 {
			require.NoError(t, pacer.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		pacer := collect.NewPacer(0.1) // 10s between requests
		require.NoError(t, pacer.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		require.Error(t, pacer.Wait(ctx))
	})
}
