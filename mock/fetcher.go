package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docmirror.Fetcher.
type Fetcher struct {
	FetchFn          func(ctx context.Context, url string) (*docmirror.FetchResult, error)
	FetchWithRetryFn func(ctx context.Context, url string, retries int) (*docmirror.FetchResult, error)
	CloseFn          func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docmirror.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) FetchWithRetry(ctx context.Context, url string, retries int) (*docmirror.FetchResult, error) {
	return f.FetchWithRetryFn(ctx, url, retries)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
