package docmirror

import (
	"context"
	"net/http"
)

// MaxResponseBytes is the largest response body the fetch client accepts,
// whether declared via Content-Length or observed while reading.
const MaxResponseBytes = 1 << 20

// MaxRedirects is the redirect hop limit for a single fetch.
const MaxRedirects = 5

// FetchResult holds a fetched response after all guard checks passed.
type FetchResult struct {
	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body is the decoded response body.
	Body []byte

	// ContentType is the media type of the response, without parameters.
	ContentType string

	// FinalURL is the URL that served the response, after redirects.
	FinalURL string

	// Header holds the headers of the final response.
	Header http.Header
}

// Fetcher retrieves text resources over HTTP with guardrails.
// Implementations follow a bounded number of redirects, reject non-text
// and oversized responses before reading bodies, and classify HTTP
// failures so callers can tell transient errors (EUNAVAILABLE) from
// permanent ones (EINVALID, ENOTFOUND).
type Fetcher interface {
	// Fetch performs a single guarded GET request.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// FetchWithRetry wraps Fetch with exponential backoff, retrying up
	// to retries times on transient failures (HTTP 5xx and 429).
	// Permanent failures return immediately.
	FetchWithRetry(ctx context.Context, url string, retries int) (*FetchResult, error)

	// Close releases client resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
