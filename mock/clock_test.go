package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/youte/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_Sleep(t *testing.T) {
	t.Parallel()

	t.Run("advances time and records the sleep", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		c := mock.NewClock(start)

		require.NoError(t, c.Sleep(context.Background(), time.Hour))

		assert.Equal(t, start.Add(time.Hour), c.Now())
		assert.Equal(t, []time.Duration{time.Hour}, c.Sleeps())
	})

	t.Run("returns error from SleepFn without advancing", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		boom := errors.New("boom")
		c := mock.NewClock(start)
		c.SleepFn = func(context.Context, time.Duration) error { return boom }

		err := c.Sleep(context.Background(), time.Hour)

		require.ErrorIs(t, err, boom)
		assert.Equal(t, start, c.Now())
		assert.Empty(t, c.Sleeps())
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := mock.NewClock(time.Now()).Sleep(ctx, time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})
}
