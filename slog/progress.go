package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/youte"
)

// Ensure LoggingProgressStoreService implements youte.ProgressStoreService.
var _ youte.ProgressStoreService = (*LoggingProgressStoreService)(nil)

// LoggingProgressStoreService wraps a ProgressStoreService with logging.
// Opened stores log their lifecycle.
type LoggingProgressStoreService struct {
	next   youte.ProgressStoreService
	logger *slog.Logger
}

// NewLoggingProgressStoreService creates a new LoggingProgressStoreService.
func NewLoggingProgressStoreService(next youte.ProgressStoreService, logger *slog.Logger) *LoggingProgressStoreService {
	return &LoggingProgressStoreService{next: next, logger: logger}
}

// OpenProgressStore delegates to the wrapped service and logs the open.
func (s *LoggingProgressStoreService) OpenProgressStore(ctx context.Context, runID string) (youte.ProgressStore, error) {
	store, err := s.next.OpenProgressStore(ctx, runID)
	if err != nil {
		s.logger.Error("progress open", "run", runID, "err", err)
		return nil, err
	}
	pending, _ := store.CountPending(ctx)
	s.logger.Debug("progress open", "run", runID, "pending", pending)
	return &loggingProgressStore{ProgressStore: store, run: runID, logger: s.logger}, nil
}

// FindRuns delegates to the wrapped service.
func (s *LoggingProgressStoreService) FindRuns(ctx context.Context) ([]string, error) {
	return s.next.FindRuns(ctx)
}

// RemoveRun delegates to the wrapped service and logs the removal.
func (s *LoggingProgressStoreService) RemoveRun(ctx context.Context, runID string) (err error) {
	defer func() {
		s.logger.Info("progress remove", "run", runID, "err", err)
	}()
	return s.next.RemoveRun(ctx, runID)
}

type loggingProgressStore struct {
	youte.ProgressStore
	run    string
	logger *slog.Logger
}

func (s *loggingProgressStore) DiscoverNext(ctx context.Context, token, ownerKey string) (err error) {
	defer func() {
		s.logger.Debug("cursor discovered", "run", s.run, "owner", ownerKey, "token", token, "err", err)
	}()
	return s.ProgressStore.DiscoverNext(ctx, token, ownerKey)
}

func (s *loggingProgressStore) Destroy() (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("progress destroy", "run", s.run, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.ProgressStore.Destroy()
}
