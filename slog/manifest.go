package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingManifestService implements docmirror.ManifestService.
var _ docmirror.ManifestService = (*LoggingManifestService)(nil)

// LoggingManifestService wraps a ManifestService with debug logging.
type LoggingManifestService struct {
	next   docmirror.ManifestService
	logger *slog.Logger
}

// NewLoggingManifestService creates a new LoggingManifestService.
func NewLoggingManifestService(next docmirror.ManifestService, logger *slog.Logger) *LoggingManifestService {
	return &LoggingManifestService{next: next, logger: logger}
}

// Classify delegates to the wrapped service.
func (s *LoggingManifestService) Classify(url string) (docmirror.ManifestKind, error) {
	return s.next.Classify(url)
}

// Resolve delegates to the wrapped service and logs the operation.
func (s *LoggingManifestService) Resolve(ctx context.Context, url string) (res *docmirror.ManifestResolution, err error) {
	defer func(begin time.Time) {
		s.logger.Info("manifest resolution",
			"url", url,
			"kind", resolutionKind(res),
			"count", resolutionCount(res),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Resolve(ctx, url)
}

func resolutionKind(res *docmirror.ManifestResolution) string {
	if res == nil {
		return ""
	}
	return string(res.Kind)
}

func resolutionCount(res *docmirror.ManifestResolution) int {
	if res == nil {
		return 0
	}
	return len(res.URLs)
}
