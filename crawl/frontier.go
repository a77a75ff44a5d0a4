package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/bloom"
	"golang.org/x/time/rate"
)

// DefaultRate is the pacing rate in requests per second applied when no
// rate is configured.
const DefaultRate = 1.0

// Dedup filter sizing. Sized far beyond any real manifest so the false
// positive rate stays negligible for the lifetime of a run.
const (
	dedupCapacity = 1 << 18
	dedupFPRate   = 1e-6
)

// Compile-time interface verification.
var _ docmirror.Frontier = (*Frontier)(nil)

// Frontier is an in-memory paced FIFO crawl queue with Bloom filter
// deduplication. URLs are deduplicated against everything ever
// enqueued; fragments are stripped first, so URLs differing only by
// fragment are considered duplicates. Dequeues are paced by a token
// bucket with burst 1, so the first Next returns immediately and later
// calls wait out the inter-request interval.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	queue   []docmirror.Target
	seen    *bloom.Filter
	visited map[string]bool
	order   []string
	limiter *rate.Limiter
}

// NewFrontier creates an empty Frontier pacing dequeues at rps requests
// per second. Non-positive rates fall back to DefaultRate.
func NewFrontier(rps float64) *Frontier {
	if rps <= 0 {
		rps = DefaultRate
	}
	return &Frontier{
		seen:    bloom.NewFilter(dedupCapacity, dedupFPRate),
		visited: make(map[string]bool),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Add enqueues a URL.
// Returns false if the URL has already been enqueued or visited.
func (f *Frontier) Add(rawURL string) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[url] || f.seen.TestAndAdd(url) {
		return false
	}
	f.queue = append(f.queue, docmirror.Target{URL: url})
	return true
}

// AddAll enqueues each URL via Add, skipping excludeURL when non-empty.
// It returns the number of URLs actually enqueued.
func (f *Frontier) AddAll(urls []string, excludeURL string) int {
	added := 0
	for _, u := range urls {
		if excludeURL != "" && u == excludeURL {
			continue
		}
		if f.Add(u) {
			added++
		}
	}
	return added
}

// Next waits out the pacing interval and returns the next target in FIFO
// order. The bool result is false when the queue is empty or the context
// is canceled; an empty queue returns immediately without waiting.
func (f *Frontier) Next(ctx context.Context) (docmirror.Target, bool) {
	f.mu.Lock()
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return docmirror.Target{}, false
	}
	limiter := f.limiter
	f.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return docmirror.Target{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return docmirror.Target{}, false
	}
	target := f.queue[0]
	f.queue = f.queue[1:]
	return target, true
}

// Retry re-enqueues the target at the tail and reports whether retry
// budget remained. Once the target has been retried
// docmirror.MaxTargetRetries times it returns false and leaves the
// queue unchanged.
func (f *Frontier) Retry(target docmirror.Target) bool {
	if target.Retries >= docmirror.MaxTargetRetries {
		return false
	}
	target.Retries++

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, target)
	return true
}

// MarkVisited records the URL as processed.
func (f *Frontier) MarkVisited(rawURL string) {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[url] {
		return
	}
	f.visited[url] = true
	f.order = append(f.order, url)
}

// HasVisited reports whether the URL has been processed.
func (f *Frontier) HasVisited(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited[stripFragment(rawURL)]
}

// VisitedCount returns the number of processed URLs.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// SetRate adjusts the pacing rate, in requests per second, for
// subsequent Next calls.
func (f *Frontier) SetRate(rps float64) {
	if rps <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limiter.SetLimit(rate.Limit(rps))
}

// Clear empties the queue, the dedup filter, and the visited set.
func (f *Frontier) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
	f.seen = bloom.NewFilter(dedupCapacity, dedupFPRate)
	f.visited = make(map[string]bool)
	f.order = nil
}

// Queued returns the queued URLs in dequeue order.
func (f *Frontier) Queued() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, len(f.queue))
	for i, t := range f.queue {
		urls[i] = t.URL
	}
	return urls
}

// Visited returns the visited URLs in insertion order.
func (f *Frontier) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// stripFragment removes the URL fragment for deduplication.
func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
