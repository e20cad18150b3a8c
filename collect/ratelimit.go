package collect

import (
	"context"

	"github.com/fwojciec/youte"
	"golang.org/x/time/rate"
)

var _ youte.Pacer = (*Pacer)(nil)

// Pacer spaces provider calls with a token bucket of burst 1.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer allowing rps requests per second.
// A non-positive rps disables pacing.
func NewPacer(rps float64) *Pacer {
	if rps <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next request may be sent.
// Returns an error if the context is canceled before the wait completes.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
