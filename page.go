package docmirror

import (
	"context"
	"time"
)

// Page is a normalized documentation page ready for storage.
type Page struct {
	URL     string
	Title   string
	Content string // Markdown

	// Status is the HTTP status the page was fetched with.
	Status int
}

// PageRecord is one attempted page in a run ledger.
type PageRecord struct {
	// URL is the page URL as it was queued, before redirects.
	URL string `json:"url"`

	// File is the corpus-relative path the page was written to.
	// Empty for failed pages.
	File string `json:"file,omitempty"`

	// FetchedAt is when the attempt completed.
	FetchedAt time.Time `json:"fetchedAt"`

	// Status is the final HTTP status, zero when no response arrived.
	Status int `json:"status"`

	// ContentHash fingerprints the stored markdown. Empty for failures.
	ContentHash string `json:"contentHash,omitempty"`
}

// Ledger summarizes one completed run.
type Ledger struct {
	RunID     string       `json:"runId"`
	Origin    string       `json:"origin"`
	CrawledAt time.Time    `json:"crawledAt"`
	Source    ManifestKind `json:"source"`
	Pages     int          `json:"pages"`
	URLs      []PageRecord `json:"urls"`
}

// Store persists normalized pages and the run ledger.
type Store interface {
	// Init prepares the target directory for writing.
	Init() error

	// Dir returns the directory pages are written to.
	Dir() string

	// SetSource records how page URLs were discovered.
	SetSource(kind ManifestKind)

	// SavePage writes the page under its URL-derived path and appends a
	// success record carrying a fresh content hash.
	SavePage(ctx context.Context, page *Page) error

	// RecordFailure appends a failure record for the URL.
	RecordFailure(url string, status int)

	// HasUnchanged reports whether a previous run stored the URL with
	// the same content hash.
	HasUnchanged(url string, hash string) bool

	// ExistingFilePath returns the path a previous run stored the URL
	// under, or empty when the URL is unknown.
	ExistingFilePath(url string) string

	// PageCount returns the number of pages saved this run.
	PageCount() int

	// SaveMeta persists the run ledger next to the pages and returns it.
	SaveMeta() (*Ledger, error)
}
