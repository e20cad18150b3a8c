package mock

import (
	"context"
	"time"

	"github.com/fwojciec/youte"
)

var _ youte.QuotaLedger = (*QuotaLedger)(nil)

// QuotaLedger is a mock implementation of youte.QuotaLedger.
type QuotaLedger struct {
	GetQuotaFn    func(ctx context.Context, providerKey string) (*youte.QuotaRecord, error)
	AddQuotaFn    func(ctx context.Context, providerKey string, units int, at time.Time) (*youte.QuotaRecord, error)
	HandleLimitFn func(ctx context.Context, providerKey string, maxQuota, cost int) error
}

func (l *QuotaLedger) GetQuota(ctx context.Context, providerKey string) (*youte.QuotaRecord, error) {
	return l.GetQuotaFn(ctx, providerKey)
}

func (l *QuotaLedger) AddQuota(ctx context.Context, providerKey string, units int, at time.Time) (*youte.QuotaRecord, error) {
	return l.AddQuotaFn(ctx, providerKey, units, at)
}

func (l *QuotaLedger) HandleLimit(ctx context.Context, providerKey string, maxQuota, cost int) error {
	return l.HandleLimitFn(ctx, providerKey, maxQuota, cost)
}
