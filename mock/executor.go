package mock

import (
	"context"

	"github.com/fwojciec/youte"
)

var _ youte.RequestExecutor = (*Executor)(nil)

// Executor is a mock implementation of youte.RequestExecutor.
type Executor struct {
	ExecuteFn func(ctx context.Context, spec *youte.RequestSpec, cursor youte.PageCursor) (*youte.ResponsePage, error)
}

func (e *Executor) Execute(ctx context.Context, spec *youte.RequestSpec, cursor youte.PageCursor) (*youte.ResponsePage, error) {
	return e.ExecuteFn(ctx, spec, cursor)
}

var _ youte.Pacer = (*Pacer)(nil)

// Pacer is a mock implementation of youte.Pacer.
type Pacer struct {
	WaitFn func(ctx context.Context) error
}

func (p *Pacer) Wait(ctx context.Context) error {
	return p.WaitFn(ctx)
}
