package mock

import (
	"context"
	"time"

	"github.com/fwojciec/youte"
)

var _ youte.ProgressStore = (*ProgressStore)(nil)

// ProgressStore is a mock implementation of youte.ProgressStore.
type ProgressStore struct {
	PendingCursorsFn func(ctx context.Context, ownerKey string) ([]string, error)
	MarkRetrievedFn  func(ctx context.Context, token, ownerKey string, at time.Time) error
	DiscoverNextFn   func(ctx context.Context, token, ownerKey string) error
	CountRetrievedFn func(ctx context.Context, ownerKey string) (int, error)
	CountPendingFn   func(ctx context.Context) (int, error)
	CursorsFn        func(ctx context.Context) ([]youte.PageCursor, error)
	StoreMetaFn      func(ctx context.Context, params youte.RunParams) error
	LoadMetaFn       func(ctx context.Context) (youte.RunParams, error)
	DestroyFn        func() error
	CloseFn          func() error
}

func (s *ProgressStore) PendingCursors(ctx context.Context, ownerKey string) ([]string, error) {
	return s.PendingCursorsFn(ctx, ownerKey)
}

func (s *ProgressStore) MarkRetrieved(ctx context.Context, token, ownerKey string, at time.Time) error {
	return s.MarkRetrievedFn(ctx, token, ownerKey, at)
}

func (s *ProgressStore) DiscoverNext(ctx context.Context, token, ownerKey string) error {
	return s.DiscoverNextFn(ctx, token, ownerKey)
}

func (s *ProgressStore) CountRetrieved(ctx context.Context, ownerKey string) (int, error) {
	return s.CountRetrievedFn(ctx, ownerKey)
}

func (s *ProgressStore) CountPending(ctx context.Context) (int, error) {
	return s.CountPendingFn(ctx)
}

func (s *ProgressStore) Cursors(ctx context.Context) ([]youte.PageCursor, error) {
	return s.CursorsFn(ctx)
}

func (s *ProgressStore) StoreMeta(ctx context.Context, params youte.RunParams) error {
	return s.StoreMetaFn(ctx, params)
}

func (s *ProgressStore) LoadMeta(ctx context.Context) (youte.RunParams, error) {
	return s.LoadMetaFn(ctx)
}

func (s *ProgressStore) Destroy() error {
	return s.DestroyFn()
}

func (s *ProgressStore) Close() error {
	return s.CloseFn()
}

var _ youte.ProgressStoreService = (*ProgressStoreService)(nil)

// ProgressStoreService is a mock implementation of youte.ProgressStoreService.
type ProgressStoreService struct {
	OpenProgressStoreFn func(ctx context.Context, runID string) (youte.ProgressStore, error)
	FindRunsFn          func(ctx context.Context) ([]string, error)
	RemoveRunFn         func(ctx context.Context, runID string) error
}

func (s *ProgressStoreService) OpenProgressStore(ctx context.Context, runID string) (youte.ProgressStore, error) {
	return s.OpenProgressStoreFn(ctx, runID)
}

func (s *ProgressStoreService) FindRuns(ctx context.Context) ([]string, error) {
	return s.FindRunsFn(ctx)
}

func (s *ProgressStoreService) RemoveRun(ctx context.Context, runID string) error {
	return s.RemoveRunFn(ctx, runID)
}
