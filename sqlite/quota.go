package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/youte"
)

// Compile-time interface verification.
var _ youte.QuotaLedger = (*QuotaLedger)(nil)

const quotaSchema = `
	CREATE TABLE IF NOT EXISTS quota (
		provider_key TEXT PRIMARY KEY,
		units_used INTEGER NOT NULL,
		last_update TEXT NOT NULL
	);
`

// QuotaLedger implements youte.QuotaLedger on a SQLite file shared by all runs.
type QuotaLedger struct {
	db    *DB
	clock youte.Clock
}

// OpenQuotaLedger opens or creates the ledger at path.
// Returns ECONFIG if the file exists but is not a usable ledger.
func OpenQuotaLedger(path string, clock youte.Clock) (*QuotaLedger, error) {
	if clock == nil {
		clock = youte.SystemClock{}
	}
	db := NewDB(path, quotaSchema)
	if err := db.Open(); err != nil {
		return nil, youte.WrapError(youte.ECONFIG, err, "quota ledger %s is unreadable", path)
	}
	return &QuotaLedger{db: db, clock: clock}, nil
}

// Close closes the ledger.
func (l *QuotaLedger) Close() error {
	return l.db.Close()
}

// GetQuota returns the usage for key as of now.
func (l *QuotaLedger) GetQuota(ctx context.Context, providerKey string) (*youte.QuotaRecord, error) {
	rec, err := l.load(ctx, l.db.QueryRowContext, providerKey)
	if err != nil {
		return nil, err
	}
	eff := rec.Effective(l.clock.Now())
	return &eff, nil
}

// AddQuota adds units to the usage of key and persists the result.
func (l *QuotaLedger) AddQuota(ctx context.Context, providerKey string, units int, at time.Time) (*youte.QuotaRecord, error) {
	if units < 0 {
		return nil, youte.Errorf(youte.EINVALID, "quota units must not be negative")
	}

	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rec, err := l.load(ctx, tx.QueryRowContext, providerKey)
	if err != nil {
		return nil, err
	}
	// The reset is judged against the new timestamp, not the wall clock.
	next := rec.Effective(at)
	next.UnitsUsed += units
	next.LastUpdate = at.UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quota (provider_key, units_used, last_update)
		VALUES (?, ?, ?)
		ON CONFLICT(provider_key) DO UPDATE
		SET units_used = excluded.units_used, last_update = excluded.last_update
	`, providerKey, next.UnitsUsed, formatTime(next.LastUpdate)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &next, nil
}

// HandleLimit sleeps until the next reset boundary if spending cost units
// would take the usage of key past maxQuota.
func (l *QuotaLedger) HandleLimit(ctx context.Context, providerKey string, maxQuota, cost int) error {
	rec, err := l.GetQuota(ctx, providerKey)
	if err != nil {
		return err
	}
	if rec.UnitsUsed+cost <= maxQuota {
		return nil
	}
	now := l.clock.Now()
	return l.clock.Sleep(ctx, youte.NextReset(now).Sub(now)+youte.QuotaResetGrace)
}

type queryRowFunc func(ctx context.Context, query string, args ...any) *sql.Row

// load reads the stored record without applying the reset boundary.
func (l *QuotaLedger) load(ctx context.Context, queryRow queryRowFunc, providerKey string) (youte.QuotaRecord, error) {
	rec := youte.QuotaRecord{ProviderKey: providerKey}
	var units sql.NullInt64
	var lastUpdate sql.NullString

	err := queryRow(ctx, `
		SELECT units_used, last_update FROM quota WHERE provider_key = ?
	`, providerKey).Scan(&units, &lastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return rec, ctx.Err()
		}
		return rec, youte.WrapError(youte.ECONFIG, err, "quota record is malformed")
	}
	if !units.Valid || !lastUpdate.Valid {
		return rec, youte.Errorf(youte.ECONFIG, "quota record is incomplete")
	}

	rec.UnitsUsed = int(units.Int64)
	rec.LastUpdate, err = parseTime(lastUpdate.String, "last_update")
	if err != nil {
		return rec, youte.WrapError(youte.ECONFIG, err, "quota record is malformed")
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}
