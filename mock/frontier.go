package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of docmirror.Frontier.
type Frontier struct {
	AddFn          func(url string) bool
	AddAllFn       func(urls []string, excludeURL string) int
	NextFn         func(ctx context.Context) (docmirror.Target, bool)
	RetryFn        func(target docmirror.Target) bool
	MarkVisitedFn  func(url string)
	HasVisitedFn   func(url string) bool
	VisitedCountFn func() int
	SetRateFn      func(rps float64)
	ClearFn        func()
	QueuedFn       func() []string
	VisitedFn      func() []string
}

func (f *Frontier) Add(url string) bool {
	return f.AddFn(url)
}

func (f *Frontier) AddAll(urls []string, excludeURL string) int {
	return f.AddAllFn(urls, excludeURL)
}

func (f *Frontier) Next(ctx context.Context) (docmirror.Target, bool) {
	return f.NextFn(ctx)
}

func (f *Frontier) Retry(target docmirror.Target) bool {
	return f.RetryFn(target)
}

func (f *Frontier) MarkVisited(url string) {
	f.MarkVisitedFn(url)
}

func (f *Frontier) HasVisited(url string) bool {
	return f.HasVisitedFn(url)
}

func (f *Frontier) VisitedCount() int {
	return f.VisitedCountFn()
}

func (f *Frontier) SetRate(rps float64) {
	f.SetRateFn(rps)
}

func (f *Frontier) Clear() {
	f.ClearFn()
}

func (f *Frontier) Queued() []string {
	return f.QueuedFn()
}

func (f *Frontier) Visited() []string {
	return f.VisitedFn()
}
