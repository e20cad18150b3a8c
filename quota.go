package youte

import (
	"context"
	"time"
	_ "time/tzdata" // reset boundary must not depend on the host zoneinfo
)

// DefaultMaxQuota is the provider's default daily allowance.
const DefaultMaxQuota = 10000

// QuotaResetGrace is added to waits for the reset boundary so the first
// call after a wait lands safely inside the new quota day.
const QuotaResetGrace = 2 * time.Second

// QuotaResetLocation is the timezone whose midnight resets the daily quota.
var QuotaResetLocation = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// LastReset returns the most recent reset boundary at or before t.
func LastReset(t time.Time) time.Time {
	local := t.In(QuotaResetLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, QuotaResetLocation)
}

// NextReset returns the first reset boundary strictly after t.
func NextReset(t time.Time) time.Time {
	local := t.In(QuotaResetLocation)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, QuotaResetLocation)
}

// QuotaRecord is the quota usage of one provider key.
type QuotaRecord struct {
	ProviderKey string    `json:"providerKey"`
	UnitsUsed   int       `json:"unitsUsed"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// Effective returns the record as seen at now: usage recorded before the
// most recent reset boundary counts as zero.
func (r QuotaRecord) Effective(now time.Time) QuotaRecord {
	if r.LastUpdate.IsZero() || r.LastUpdate.Before(LastReset(now)) {
		return QuotaRecord{ProviderKey: r.ProviderKey}
	}
	return r
}

// Validate returns an error if the record cannot have been written by a ledger.
func (r *QuotaRecord) Validate() error {
	if r.ProviderKey == "" {
		return Errorf(EINVALID, "quota record provider key required")
	}
	if r.UnitsUsed < 0 {
		return Errorf(ECONFIG, "quota record for key has negative usage %d", r.UnitsUsed)
	}
	return nil
}

// QuotaLedger tracks units consumed per provider key across runs.
type QuotaLedger interface {
	// GetQuota returns the usage for key as of now. A missing record, or one
	// last updated before the current reset boundary, reads as zero.
	// Storage is never modified.
	// Returns ECONFIG if the persisted record is malformed.
	GetQuota(ctx context.Context, providerKey string) (*QuotaRecord, error)

	// AddQuota adds units to the current usage and persists the new total
	// and timestamp in a single write.
	AddQuota(ctx context.Context, providerKey string, units int, at time.Time) (*QuotaRecord, error)

	// HandleLimit blocks until the next reset boundary when spending cost
	// more units would exceed maxQuota. It never resets the counter.
	HandleLimit(ctx context.Context, providerKey string, maxQuota, cost int) error
}
