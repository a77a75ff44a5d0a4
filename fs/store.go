package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docmirror"
	"github.com/google/uuid"
)

// MetaFileName is the ledger file written next to the pages.
const MetaFileName = "meta.json"

// Ensure Store implements docmirror.Store at compile time.
var _ docmirror.Store = (*Store)(nil)

// Store implements docmirror.Store on the local filesystem.
// Each page becomes one markdown file at a URL-derived path; a
// meta.json ledger describes the run. A prior ledger in the same
// directory drives change detection for incremental re-crawls.
type Store struct {
	dir    string
	origin string
	runID  string

	source    docmirror.ManifestKind
	crawledAt time.Time
	records   []docmirror.PageRecord
	saved     int
	prior     map[string]docmirror.PageRecord
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDir overrides the default per-host output directory.
func WithDir(dir string) StoreOption {
	return func(s *Store) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// NewStore creates a Store for the site rooted at rawURL.
// Pages go to the default per-host cache directory unless WithDir
// overrides it.
func NewStore(rawURL string, opts ...StoreOption) *Store {
	origin := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}

	s := &Store{
		dir:    DefaultDir(rawURL),
		origin: origin,
		runID:  uuid.NewString(),
		prior:  make(map[string]docmirror.PageRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the output directory and loads any prior ledger for
// change detection.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	s.crawledAt = time.Now().UTC()
	s.loadPrior()
	return nil
}

// Dir returns the directory pages are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SetSource records how page URLs were discovered.
func (s *Store) SetSource(kind docmirror.ManifestKind) {
	s.source = kind
}

// SavePage writes the page as markdown with frontmatter and appends a
// success record. A page whose content matches the prior run keeps its
// existing file untouched.
func (s *Store) SavePage(ctx context.Context, page *docmirror.Page) error {
	relPath, err := URLToFilePath(page.URL)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	hash := contentHash(page.Content)
	fullPath := filepath.Join(s.dir, filepath.FromSlash(relPath))

	if !s.skipWrite(page.URL, hash, fullPath) {
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		content := FormatDocument(page, now)
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return err
		}
	}

	status := page.Status
	if status == 0 {
		status = 200
	}
	s.records = append(s.records, docmirror.PageRecord{
		URL:         page.URL,
		File:        relPath,
		FetchedAt:   now,
		Status:      status,
		ContentHash: hash,
	})
	s.saved++
	return nil
}

// RecordFailure appends a failure record for the URL.
// Failures carry no file path or content hash.
func (s *Store) RecordFailure(url string, status int) {
	s.records = append(s.records, docmirror.PageRecord{
		URL:       url,
		FetchedAt: time.Now().UTC(),
		Status:    status,
	})
}

// HasUnchanged reports whether the prior run stored the URL with the
// same content hash.
func (s *Store) HasUnchanged(url string, hash string) bool {
	rec, ok := s.prior[url]
	return ok && rec.ContentHash != "" && rec.ContentHash == hash
}

// ExistingFilePath returns the absolute path the prior run stored the
// URL under, or empty when the URL is unknown.
func (s *Store) ExistingFilePath(url string) string {
	rec, ok := s.prior[url]
	if !ok || rec.File == "" {
		return ""
	}
	return filepath.Join(s.dir, filepath.FromSlash(rec.File))
}

// PageCount returns the number of pages saved this run.
func (s *Store) PageCount() int {
	return s.saved
}

// SaveMeta persists the run ledger as meta.json and returns it.
// Only the current run's records are serialized; prior entries exist
// solely for change detection.
func (s *Store) SaveMeta() (*docmirror.Ledger, error) {
	ledger := &docmirror.Ledger{
		RunID:     s.runID,
		Origin:    s.origin,
		CrawledAt: s.crawledAt,
		Source:    s.source,
		Pages:     s.saved,
		URLs:      s.records,
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(s.dir, MetaFileName), data, 0644); err != nil {
		return nil, err
	}
	return ledger, nil
}

// skipWrite reports whether the page file can be left untouched: the
// prior run recorded the same hash and the file is still on disk.
func (s *Store) skipWrite(url, hash, fullPath string) bool {
	if !s.HasUnchanged(url, hash) {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// loadPrior reads the previous run's ledger if one exists.
// Unreadable or corrupt ledgers simply disable change detection.
func (s *Store) loadPrior() {
	data, err := os.ReadFile(filepath.Join(s.dir, MetaFileName))
	if err != nil {
		return
	}
	var ledger docmirror.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return
	}
	for _, rec := range ledger.URLs {
		if rec.ContentHash != "" {
			s.prior[rec.URL] = rec
		}
	}
}

// FormatDocument formats a page with YAML frontmatter.
func FormatDocument(page *docmirror.Page, crawledAt time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	b.WriteString("\ncrawled: ")
	b.WriteString(crawledAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// contentHash fingerprints normalized markdown.
// Must stay in sync with the hash the orchestrator computes for
// change detection.
func contentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
