package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/youte"
)

// Ensure LoggingQuotaLedger implements youte.QuotaLedger.
var _ youte.QuotaLedger = (*LoggingQuotaLedger)(nil)

// LoggingQuotaLedger wraps a QuotaLedger with logging.
type LoggingQuotaLedger struct {
	next   youte.QuotaLedger
	logger *slog.Logger
}

// NewLoggingQuotaLedger creates a new LoggingQuotaLedger.
func NewLoggingQuotaLedger(next youte.QuotaLedger, logger *slog.Logger) *LoggingQuotaLedger {
	return &LoggingQuotaLedger{next: next, logger: logger}
}

// GetQuota delegates to the wrapped ledger.
func (l *LoggingQuotaLedger) GetQuota(ctx context.Context, providerKey string) (*youte.QuotaRecord, error) {
	return l.next.GetQuota(ctx, providerKey)
}

// AddQuota delegates to the wrapped ledger and logs the new total.
func (l *LoggingQuotaLedger) AddQuota(ctx context.Context, providerKey string, units int, at time.Time) (rec *youte.QuotaRecord, err error) {
	defer func() {
		used := 0
		if rec != nil {
			used = rec.UnitsUsed
		}
		l.logger.Debug("quota add",
			"units", units,
			"used", used,
			"err", err,
		)
	}()
	return l.next.AddQuota(ctx, providerKey, units, at)
}

// HandleLimit delegates to the wrapped ledger. Waits long enough to be
// noticed are logged.
func (l *LoggingQuotaLedger) HandleLimit(ctx context.Context, providerKey string, maxQuota, cost int) (err error) {
	defer func(begin time.Time) {
		if waited := time.Since(begin); waited > time.Second || err != nil {
			l.logger.Info("quota limit",
				"max", maxQuota,
				"cost", cost,
				"waited", waited,
				"err", err,
			)
		}
	}(time.Now())
	return l.next.HandleLimit(ctx, providerKey, maxQuota, cost)
}
