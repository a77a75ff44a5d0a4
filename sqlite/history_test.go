package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func testLedger(runID string, crawledAt time.Time) *docmirror.Ledger {
	return &docmirror.Ledger{
		RunID:     runID,
		Origin:    "https://example.com",
		CrawledAt: crawledAt,
		Source:    docmirror.ManifestIndex,
		Pages:     2,
		URLs: []docmirror.PageRecord{
			{
				URL:         "https://example.com/docs/intro",
				File:        "docs/intro.md",
				FetchedAt:   crawledAt.Add(time.Second),
				Status:      200,
				ContentHash: "a1b2c3d4",
			},
			{
				URL:         "https://example.com/docs/api",
				File:        "docs/api.md",
				FetchedAt:   crawledAt.Add(2 * time.Second),
				Status:      200,
				ContentHash: "e5f6a7b8",
			},
		},
	}
}

func TestHistoryService_SaveRun(t *testing.T) {
	t.Parallel()

	t.Run("archives a run with its page records", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		crawledAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
		err := svc.SaveRun(ctx, testLedger("run-1", crawledAt))
		require.NoError(t, err)

		var runCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&runCount)
		require.NoError(t, err)
		assert.Equal(t, 1, runCount)

		var pageCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE run_id = ?", "run-1").Scan(&pageCount)
		require.NoError(t, err)
		assert.Equal(t, 2, pageCount)
	})

	t.Run("rejects a nil ledger", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)

		err := svc.SaveRun(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
	})

	t.Run("rejects a missing run ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)

		ledger := testLedger("", time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC))
		err := svc.SaveRun(context.Background(), ledger)
		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
	})

	t.Run("rejects a duplicate run ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		crawledAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
		require.NoError(t, svc.SaveRun(ctx, testLedger("run-1", crawledAt)))

		err := svc.SaveRun(ctx, testLedger("run-1", crawledAt))
		require.Error(t, err)
	})
}

func TestHistoryService_FindRun(t *testing.T) {
	t.Parallel()

	t.Run("returns the archived ledger", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		crawledAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
		saved := testLedger("run-1", crawledAt)
		require.NoError(t, svc.SaveRun(ctx, saved))

		found, err := svc.FindRun(ctx, "run-1")
		require.NoError(t, err)

		assert.Equal(t, "run-1", found.RunID)
		assert.Equal(t, "https://example.com", found.Origin)
		assert.Equal(t, docmirror.ManifestIndex, found.Source)
		assert.Equal(t, crawledAt, found.CrawledAt)
		assert.Equal(t, 2, found.Pages)
		require.Len(t, found.URLs, 2)
		assert.Equal(t, saved.URLs[0], found.URLs[0])
		assert.Equal(t, saved.URLs[1], found.URLs[1])
	})

	t.Run("preserves page record order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		crawledAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
		ledger := &docmirror.Ledger{
			RunID:     "run-1",
			Origin:    "https://example.com",
			CrawledAt: crawledAt,
			Source:    docmirror.ManifestSitemap,
			URLs: []docmirror.PageRecord{
				{URL: "https://example.com/c", FetchedAt: crawledAt},
				{URL: "https://example.com/a", FetchedAt: crawledAt},
				{URL: "https://example.com/b", FetchedAt: crawledAt},
			},
		}
		require.NoError(t, svc.SaveRun(ctx, ledger))

		found, err := svc.FindRun(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, found.URLs, 3)
		assert.Equal(t, "https://example.com/c", found.URLs[0].URL)
		assert.Equal(t, "https://example.com/a", found.URLs[1].URL)
		assert.Equal(t, "https://example.com/b", found.URLs[2].URL)
	})

	t.Run("returns ENOTFOUND for an unknown run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)

		_, err := svc.FindRun(context.Background(), "no-such-run")
		require.Error(t, err)
		assert.Equal(t, docmirror.ENOTFOUND, docmirror.ErrorCode(err))
	})
}

func TestHistoryService_ListRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns runs newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		require.NoError(t, svc.SaveRun(ctx, testLedger("run-1", time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC))))
		require.NoError(t, svc.SaveRun(ctx, testLedger("run-2", time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))))
		require.NoError(t, svc.SaveRun(ctx, testLedger("run-3", time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC))))

		runs, err := svc.ListRuns(ctx, "")
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "run-2", runs[0].RunID)
		assert.Equal(t, "run-3", runs[1].RunID)
		assert.Equal(t, "run-1", runs[2].RunID)
	})

	t.Run("filters by origin", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		first := testLedger("run-1", time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC))
		second := testLedger("run-2", time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC))
		second.Origin = "https://other.example.org"
		require.NoError(t, svc.SaveRun(ctx, first))
		require.NoError(t, svc.SaveRun(ctx, second))

		runs, err := svc.ListRuns(ctx, "https://example.com")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "run-1", runs[0].RunID)

		runs, err = svc.ListRuns(ctx, "https://nowhere.example.net")
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("counts failed pages", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewHistoryService(db)
		ctx := context.Background()

		crawledAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
		ledger := &docmirror.Ledger{
			RunID:     "run-1",
			Origin:    "https://example.com",
			CrawledAt: crawledAt,
			Source:    docmirror.ManifestIndex,
			Pages:     2,
			URLs: []docmirror.PageRecord{
				{URL: "https://example.com/a", File: "a.md", FetchedAt: crawledAt, Status: 200, ContentHash: "aa"},
				{URL: "https://example.com/gone", FetchedAt: crawledAt, Status: 404},
				{URL: "https://example.com/b", File: "b.md", FetchedAt: crawledAt, Status: 200, ContentHash: "bb"},
			},
		}
		require.NoError(t, svc.SaveRun(ctx, ledger))

		runs, err := svc.ListRuns(ctx, "")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, 2, runs[0].Pages)
		assert.Equal(t, 1, runs[0].Failures)
		assert.Equal(t, docmirror.ManifestIndex, runs[0].Source)
		assert.Equal(t, crawledAt, runs[0].CrawledAt)
	})
}
