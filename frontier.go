package docmirror

import "context"

// MaxTargetRetries is how many times a target may be re-enqueued.
const MaxTargetRetries = 3

// Target is a queued crawl target.
type Target struct {
	URL string

	// Retries counts how many times the target has been re-enqueued.
	Retries int
}

// Frontier manages the crawl queue for a single run: deduplication
// against everything previously enqueued, FIFO ordering, and pacing
// between dequeues.
type Frontier interface {
	// Add enqueues a URL.
	// Returns false without side effects when the URL is already queued
	// or visited.
	Add(url string) bool

	// AddAll enqueues each URL via Add, skipping excludeURL when
	// non-empty. It returns the number of URLs actually enqueued.
	AddAll(urls []string, excludeURL string) int

	// Next waits out the pacing interval and returns the next target in
	// FIFO order. The bool result is false when the queue is empty or
	// the context is canceled; an empty queue returns immediately.
	Next(ctx context.Context) (Target, bool)

	// Retry re-enqueues the target at the tail and reports whether retry
	// budget remained. Once the target has been retried MaxTargetRetries
	// times it returns false and leaves the queue unchanged.
	Retry(target Target) bool

	// MarkVisited records the URL as processed.
	MarkVisited(url string)

	// HasVisited reports whether the URL has been processed.
	HasVisited(url string) bool

	// VisitedCount returns the number of processed URLs.
	VisitedCount() int

	// SetRate adjusts the pacing rate, in requests per second, for
	// subsequent Next calls.
	SetRate(rps float64)

	// Clear empties the queue and the visited set.
	Clear()

	// Queued returns the queued URLs in dequeue order.
	Queued() []string

	// Visited returns the visited URLs in insertion order.
	Visited() []string
}
