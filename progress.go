package youte

import (
	"context"
	"time"
)

// ProgressStore is the durable cursor table of one run.
// All operations take the owner key of the scope they act on; plain runs
// use the empty owner key.
type ProgressStore interface {
	// PendingCursors returns the unretrieved tokens of a scope in discovery
	// order. The base cursor "" is seeded the first time a scope is seen.
	PendingCursors(ctx context.Context, ownerKey string) ([]string, error)

	// MarkRetrieved stamps a cursor. Marking a retrieved cursor is a no-op.
	MarkRetrieved(ctx context.Context, token, ownerKey string, at time.Time) error

	// DiscoverNext records a newly seen token. Known tokens are ignored.
	DiscoverNext(ctx context.Context, token, ownerKey string) error

	// CountRetrieved returns the number of retrieved cursors of a scope.
	CountRetrieved(ctx context.Context, ownerKey string) (int, error)

	// CountPending returns the number of unretrieved cursors of the run.
	CountPending(ctx context.Context) (int, error)

	// Cursors returns every cursor of the run in discovery order.
	Cursors(ctx context.Context) ([]PageCursor, error)

	// StoreMeta persists the run parameters.
	StoreMeta(ctx context.Context, params RunParams) error

	// LoadMeta returns the stored run parameters.
	// Returns ENOTFOUND if none were stored.
	LoadMeta(ctx context.Context) (RunParams, error)

	// Destroy closes the store and deletes its durable state.
	Destroy() error

	// Close releases the store, keeping its durable state.
	Close() error
}

// ProgressStoreService manages the progress stores of all runs.
type ProgressStoreService interface {
	// OpenProgressStore opens or creates the store of a run.
	OpenProgressStore(ctx context.Context, runID string) (ProgressStore, error)

	// FindRuns lists the identifiers of runs with stored progress.
	FindRuns(ctx context.Context) ([]string, error)

	// RemoveRun deletes the stored progress of a run.
	// Returns ENOTFOUND if the run has no stored progress.
	RemoveRun(ctx context.Context, runID string) error
}
