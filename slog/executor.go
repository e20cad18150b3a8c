// Package slog provides logging decorators for youte services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/youte"
)

// Ensure LoggingExecutor implements youte.RequestExecutor.
var _ youte.RequestExecutor = (*LoggingExecutor)(nil)

// LoggingExecutor wraps a RequestExecutor with logging.
type LoggingExecutor struct {
	next   youte.RequestExecutor
	logger *slog.Logger
}

// NewLoggingExecutor creates a new LoggingExecutor.
func NewLoggingExecutor(next youte.RequestExecutor, logger *slog.Logger) *LoggingExecutor {
	return &LoggingExecutor{next: next, logger: logger}
}

// Execute delegates to the wrapped executor and logs the call.
// Successful calls log at debug level, failures at warn.
func (e *LoggingExecutor) Execute(ctx context.Context, spec *youte.RequestSpec, cursor youte.PageCursor) (page *youte.ResponsePage, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		items := 0
		if page != nil {
			items = len(page.Items())
		}
		e.logger.Log(ctx, level, "execute",
			"url", spec.URL,
			"owner", cursor.OwnerKey,
			"token", cursor.Token,
			"items", items,
			"duration", time.Since(begin),
			"code", youte.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return e.next.Execute(ctx, spec, cursor)
}
