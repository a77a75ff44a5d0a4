package docmirror

import (
	"context"
	"time"
)

// RobotsPolicy is the crawl policy derived from one origin's robots.txt.
type RobotsPolicy struct {
	// Allow reports whether the policy permits fetching the given path.
	Allow func(path string) bool

	// CrawlDelay is the delay the origin requests between fetches,
	// zero when none is specified.
	CrawlDelay time.Duration

	// Sitemaps lists sitemap URLs advertised by the origin.
	Sitemaps []string
}

// RobotsService resolves and caches per-origin robots.txt policies.
type RobotsService interface {
	// Policy returns the policy governing pageURL. The origin's
	// robots.txt is fetched at most once and the parsed policy cached
	// for the lifetime of the service. Failure to obtain or parse
	// robots.txt yields a permissive policy unless the implementation
	// is configured to fail closed.
	Policy(ctx context.Context, pageURL string) *RobotsPolicy

	// ResetCache discards all cached policies.
	ResetCache()
}
