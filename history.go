package docmirror

import (
	"context"
	"time"
)

// RunSummary describes one archived crawl run.
type RunSummary struct {
	RunID     string
	Origin    string
	Source    ManifestKind
	CrawledAt time.Time
	Pages     int
	Failures  int
}

// HistoryService archives completed run ledgers for later inspection.
type HistoryService interface {
	// SaveRun archives a completed run ledger.
	SaveRun(ctx context.Context, ledger *Ledger) error

	// ListRuns returns archived runs, newest first.
	// A non-empty origin restricts the listing to that origin.
	ListRuns(ctx context.Context, origin string) ([]*RunSummary, error)

	// FindRun returns the archived ledger for a run ID.
	FindRun(ctx context.Context, runID string) (*Ledger, error)
}
