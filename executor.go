package youte

import "context"

// RequestExecutor performs one provider call for a cursor.
// Implementations classify failures into ESKIPPED, EQUOTA, ETRANSIENT,
// EFATAL and EDECODE errors and never touch progress or quota state.
type RequestExecutor interface {
	Execute(ctx context.Context, spec *RequestSpec, cursor PageCursor) (*ResponsePage, error)
}

// Pacer spaces out provider calls.
type Pacer interface {
	// Wait blocks until the next request may be sent.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context) error
}
