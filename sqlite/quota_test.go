package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/mock"
	"github.com/fwojciec/youte/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noon is 04:00 in the reset timezone; the next reset is 20 hours away.
var noon = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openLedger(t *testing.T, clock youte.Clock) (*sqlite.QuotaLedger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quota.db")
	ledger, err := sqlite.OpenQuotaLedger(path, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger, path
}

func TestQuotaLedger_AddQuota(t *testing.T) {
	t.Parallel()

	t.Run("accumulates within a quota day", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ledger, _ := openLedger(t, mock.NewClock(noon))

		rec, err := ledger.AddQuota(ctx, "key-a", 100, noon)
		require.NoError(t, err)
		assert.Equal(t, 100, rec.UnitsUsed)

		rec, err = ledger.AddQuota(ctx, "key-a", 1, noon.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 101, rec.UnitsUsed)

		got, err := ledger.GetQuota(ctx, "key-a")
		require.NoError(t, err)
		assert.Equal(t, 101, got.UnitsUsed)
		assert.True(t, noon.Add(time.Minute).Equal(got.LastUpdate))
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ledger, _ := openLedger(t, mock.NewClock(noon))

		_, err := ledger.AddQuota(ctx, "key-a", 100, noon)
		require.NoError(t, err)

		got, err := ledger.GetQuota(ctx, "key-b")
		require.NoError(t, err)
		assert.Equal(t, 0, got.UnitsUsed)
		assert.Equal(t, "key-b", got.ProviderKey)
	})

	t.Run("starts over after the reset boundary", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		clock := mock.NewClock(noon)
		ledger, _ := openLedger(t, clock)

		_, err := ledger.AddQuota(ctx, "key-a", 9000, noon)
		require.NoError(t, err)

		clock.Advance(21 * time.Hour)

		got, err := ledger.GetQuota(ctx, "key-a")
		require.NoError(t, err)
		assert.Equal(t, 0, got.UnitsUsed)

		rec, err := ledger.AddQuota(ctx, "key-a", 1, clock.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, rec.UnitsUsed)
	})

	t.Run("persists across reopen", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "quota.db")

		ledger, err := sqlite.OpenQuotaLedger(path, mock.NewClock(noon))
		require.NoError(t, err)
		_, err = ledger.AddQuota(ctx, "key-a", 300, noon)
		require.NoError(t, err)
		require.NoError(t, ledger.Close())

		reopened, err := sqlite.OpenQuotaLedger(path, mock.NewClock(noon.Add(time.Hour)))
		require.NoError(t, err)
		defer reopened.Close()

		got, err := reopened.GetQuota(ctx, "key-a")
		require.NoError(t, err)
		assert.Equal(t, 300, got.UnitsUsed)
	})

	t.Run("rejects negative units", func(t *testing.T) {
		t.Parallel()

		ledger, _ := openLedger(t, mock.NewClock(noon))
		_, err := ledger.AddQuota(context.Background(), "key-a", -1, noon)
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))
	})
}

func TestQuotaLedger_HandleLimit(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately under the ceiling", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		clock := mock.NewClock(noon)
		ledger, _ := openLedger(t, clock)

		_, err := ledger.AddQuota(ctx, "key-a", 9900, noon)
		require.NoError(t, err)

		require.NoError(t, ledger.HandleLimit(ctx, "key-a", 10000, 100))
		assert.Empty(t, clock.Sleeps())
	})

	t.Run("sleeps until the reset when the call would exceed the ceiling", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		clock := mock.NewClock(noon)
		ledger, _ := openLedger(t, clock)

		_, err := ledger.AddQuota(ctx, "key-a", 9950, noon)
		require.NoError(t, err)

		require.NoError(t, ledger.HandleLimit(ctx, "key-a", 10000, 100))
		assert.Equal(t, []time.Duration{20*time.Hour + youte.QuotaResetGrace}, clock.Sleeps())

		// Waiting never writes the counter; it only reads as zero now.
		got, err := ledger.GetQuota(ctx, "key-a")
		require.NoError(t, err)
		assert.Equal(t, 0, got.UnitsUsed)
	})

	t.Run("returns the context error when interrupted", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		clock := mock.NewClock(noon)
		clock.SleepFn = func(context.Context, time.Duration) error { return context.Canceled }
		ledger, _ := openLedger(t, clock)

		_, err := ledger.AddQuota(ctx, "key-a", 10000, noon)
		require.NoError(t, err)

		err = ledger.HandleLimit(ctx, "key-a", 10000, 1)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOpenQuotaLedger(t *testing.T) {
	t.Parallel()

	t.Run("rejects a file that is not a ledger", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "quota.db")
		require.NoError(t, os.WriteFile(path, []byte("this is not a database, just some text that is long enough"), 0644))

		_, err := sqlite.OpenQuotaLedger(path, nil)
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})

	t.Run("rejects a negative stored usage", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ledger, path := openLedger(t, mock.NewClock(noon))
		_, err := ledger.AddQuota(ctx, "key-a", 5, noon)
		require.NoError(t, err)

		db := sqlite.NewDB(path, "SELECT 1")
		require.NoError(t, db.Open())
		_, err = db.ExecContext(ctx, "UPDATE quota SET units_used = -5")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = ledger.GetQuota(ctx, "key-a")
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})

	t.Run("rejects a malformed timestamp", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ledger, path := openLedger(t, mock.NewClock(noon))
		_, err := ledger.AddQuota(ctx, "key-a", 5, noon)
		require.NoError(t, err)

		db := sqlite.NewDB(path, "SELECT 1")
		require.NoError(t, db.Open())
		_, err = db.ExecContext(ctx, "UPDATE quota SET last_update = 'yesterday'")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = ledger.GetQuota(ctx, "key-a")
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})
}
