package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingRobotsService implements docmirror.RobotsService.
var _ docmirror.RobotsService = (*LoggingRobotsService)(nil)

// LoggingRobotsService wraps a RobotsService with debug logging.
type LoggingRobotsService struct {
	next   docmirror.RobotsService
	logger *slog.Logger
}

// NewLoggingRobotsService creates a new LoggingRobotsService.
func NewLoggingRobotsService(next docmirror.RobotsService, logger *slog.Logger) *LoggingRobotsService {
	return &LoggingRobotsService{next: next, logger: logger}
}

// Policy delegates to the wrapped service and logs the lookup.
func (s *LoggingRobotsService) Policy(ctx context.Context, pageURL string) (policy *docmirror.RobotsPolicy) {
	defer func(begin time.Time) {
		s.logger.Info("robots policy",
			"url", pageURL,
			"crawl_delay", policyDelay(policy),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Policy(ctx, pageURL)
}

// ResetCache delegates to the wrapped service.
func (s *LoggingRobotsService) ResetCache() {
	s.next.ResetCache()
}

func policyDelay(policy *docmirror.RobotsPolicy) time.Duration {
	if policy == nil {
		return 0
	}
	return policy.CrawlDelay
}
