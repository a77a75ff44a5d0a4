// Package slog provides logging decorators for docmirror services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingFetcher implements docmirror.Fetcher.
var _ docmirror.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   docmirror.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docmirror.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *docmirror.FetchResult, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"status", fetchStatus(res),
			"bytes", fetchBytes(res),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// FetchWithRetry logs the fetch including its retry budget and delegates
// to the wrapped fetcher.
func (f *LoggingFetcher) FetchWithRetry(ctx context.Context, url string, retries int) (res *docmirror.FetchResult, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"retries", retries,
			"status", fetchStatus(res),
			"bytes", fetchBytes(res),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchWithRetry(ctx, url, retries)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

func fetchStatus(res *docmirror.FetchResult) int {
	if res == nil {
		return 0
	}
	return res.StatusCode
}

func fetchBytes(res *docmirror.FetchResult) int {
	if res == nil {
		return 0
	}
	return len(res.Body)
}
