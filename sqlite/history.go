package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
)

// Compile-time interface verification.
var _ docmirror.HistoryService = (*HistoryService)(nil)

// HistoryService implements docmirror.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// SaveRun archives a completed run ledger.
func (s *HistoryService) SaveRun(ctx context.Context, ledger *docmirror.Ledger) error {
	if ledger == nil {
		return docmirror.Errorf(docmirror.EINVALID, "ledger required")
	}
	if ledger.RunID == "" {
		return docmirror.Errorf(docmirror.EINVALID, "run ID required")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, origin, source, crawled_at, pages)
		VALUES (?, ?, ?, ?, ?)
	`, ledger.RunID, ledger.Origin, string(ledger.Source),
		ledger.CrawledAt.Format(time.RFC3339), ledger.Pages)
	if err != nil {
		return err
	}

	for i, rec := range ledger.URLs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (run_id, position, url, file, fetched_at, status, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, ledger.RunID, i, rec.URL, rec.File,
			rec.FetchedAt.Format(time.RFC3339), rec.Status, rec.ContentHash)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRuns returns archived runs, newest first.
func (s *HistoryService) ListRuns(ctx context.Context, origin string) ([]*docmirror.RunSummary, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT r.run_id, r.origin, r.source, r.crawled_at, r.pages,
			(SELECT COUNT(*) FROM pages p WHERE p.run_id = r.run_id AND p.content_hash = '') AS failures
		FROM runs r
	`)

	if origin != "" {
		query.WriteString(" WHERE r.origin = ?")
		args = append(args, origin)
	}

	query.WriteString(" ORDER BY r.crawled_at DESC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*docmirror.RunSummary
	for rows.Next() {
		var run docmirror.RunSummary
		var source, crawledAt string

		if err := rows.Scan(&run.RunID, &run.Origin, &source, &crawledAt,
			&run.Pages, &run.Failures); err != nil {
			return nil, err
		}

		run.Source = docmirror.ManifestKind(source)
		run.CrawledAt, err = parseRFC3339(crawledAt, "crawled_at")
		if err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// FindRun returns the archived ledger for a run ID.
func (s *HistoryService) FindRun(ctx context.Context, runID string) (*docmirror.Ledger, error) {
	var ledger docmirror.Ledger
	var source, crawledAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, origin, source, crawled_at, pages
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&ledger.RunID, &ledger.Origin, &source, &crawledAt, &ledger.Pages)

	if err == sql.ErrNoRows {
		return nil, docmirror.Errorf(docmirror.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	ledger.Source = docmirror.ManifestKind(source)
	ledger.CrawledAt, err = parseRFC3339(crawledAt, "crawled_at")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, file, fetched_at, status, content_hash
		FROM pages
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec docmirror.PageRecord
		var fetchedAt string

		if err := rows.Scan(&rec.URL, &rec.File, &fetchedAt, &rec.Status, &rec.ContentHash); err != nil {
			return nil, err
		}

		rec.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
		if err != nil {
			return nil, err
		}

		ledger.URLs = append(ledger.URLs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ledger, nil
}

// parseRFC3339 parses a stored timestamp column value.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}
