package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	page := &docmirror.Page{
		URL:     "https://example.com/docs/api",
		Title:   "API Reference",
		Content: "# API Reference\n\nThis is the API documentation.",
	}

	got := fs.FormatDocument(page, time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC))

	want := `---
source: https://example.com/docs/api
title: API Reference
crawled: 2026-08-20
---

# API Reference

This is the API documentation.`

	assert.Equal(t, want, got)
}

func TestStore_SavePage(t *testing.T) {
	t.Parallel()

	t.Run("writes the page at its URL-derived path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
		require.NoError(t, store.Init())

		err := store.SavePage(context.Background(), &docmirror.Page{
			URL:     "https://example.com/docs/api/users",
			Title:   "Users API",
			Content: "# Users API\n\nManage users.",
			Status:  200,
		})

		require.NoError(t, err)
		content, err := os.ReadFile(filepath.Join(dir, "docs", "api", "users.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "source: https://example.com/docs/api/users")
		assert.Contains(t, string(content), "title: Users API")
		assert.Contains(t, string(content), "# Users API\n\nManage users.")
		assert.Equal(t, 1, store.PageCount())
	})

	t.Run("maps the site root to index.md", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
		require.NoError(t, store.Init())

		err := store.SavePage(context.Background(), &docmirror.Page{
			URL:     "https://example.com/",
			Title:   "Home",
			Content: "Welcome.",
		})

		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "index.md"))
		require.NoError(t, err)
	})
}

func TestStore_SaveMeta(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fs.NewStore("https://example.com/sitemap.xml", fs.WithDir(dir))
	require.NoError(t, store.Init())
	store.SetSource(docmirror.ManifestSitemap)

	require.NoError(t, store.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/a",
		Title:   "A",
		Content: "# A",
		Status:  200,
	}))
	require.NoError(t, store.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/b",
		Title:   "B",
		Content: "# B",
		Status:  200,
	}))
	store.RecordFailure("https://example.com/docs/gone", 404)

	ledger, err := store.SaveMeta()
	require.NoError(t, err)

	assert.NotEmpty(t, ledger.RunID)
	assert.Equal(t, "https://example.com", ledger.Origin)
	assert.Equal(t, docmirror.ManifestSitemap, ledger.Source)
	assert.Equal(t, 2, ledger.Pages)
	require.Len(t, ledger.URLs, 3)

	assert.Equal(t, "docs/a.md", ledger.URLs[0].File)
	assert.NotEmpty(t, ledger.URLs[0].ContentHash)
	assert.Equal(t, 200, ledger.URLs[0].Status)

	failed := ledger.URLs[2]
	assert.Equal(t, "https://example.com/docs/gone", failed.URL)
	assert.Equal(t, 404, failed.Status)
	assert.Empty(t, failed.File)
	assert.Empty(t, failed.ContentHash)

	data, err := os.ReadFile(filepath.Join(dir, fs.MetaFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source": "sitemap"`)
	assert.Contains(t, string(data), `"pages": 2`)
}

func TestStore_HasUnchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "# Stable\n\nNothing changed here."

	first := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, first.Init())
	require.NoError(t, first.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/stable",
		Title:   "Stable",
		Content: content,
	}))
	_, err := first.SaveMeta()
	require.NoError(t, err)

	second := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, second.Init())

	assert.True(t, second.HasUnchanged("https://example.com/docs/stable", crawl.ComputeHash(content)))
	assert.False(t, second.HasUnchanged("https://example.com/docs/stable", crawl.ComputeHash("different")))
	assert.False(t, second.HasUnchanged("https://example.com/docs/other", crawl.ComputeHash(content)))
}

func TestStore_SavePage_SkipsRewriteForUnchangedContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "# Guide\n\nOriginal content."
	pagePath := filepath.Join(dir, "docs", "guide.md")

	first := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, first.Init())
	require.NoError(t, first.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: content,
	}))
	_, err := first.SaveMeta()
	require.NoError(t, err)

	// Local edits survive a re-crawl of unchanged content.
	marker := []byte("local edit marker")
	require.NoError(t, os.WriteFile(pagePath, marker, 0644))

	second := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, second.Init())
	require.NoError(t, second.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: content,
	}))

	got, err := os.ReadFile(pagePath)
	require.NoError(t, err)
	assert.Equal(t, marker, got, "unchanged page must not be rewritten")
	assert.Equal(t, 1, second.PageCount(), "unchanged page still counts as saved")
}

func TestStore_SavePage_RewritesChangedContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pagePath := filepath.Join(dir, "docs", "guide.md")

	first := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, first.Init())
	require.NoError(t, first.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: "# Guide\n\nOld content.",
	}))
	_, err := first.SaveMeta()
	require.NoError(t, err)

	second := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, second.Init())
	require.NoError(t, second.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: "# Guide\n\nNew content.",
	}))

	got, err := os.ReadFile(pagePath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "New content.")
}

func TestStore_SavePage_RestoresDeletedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "# Guide\n\nSame content."
	pagePath := filepath.Join(dir, "docs", "guide.md")

	first := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, first.Init())
	require.NoError(t, first.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: content,
	}))
	_, err := first.SaveMeta()
	require.NoError(t, err)

	require.NoError(t, os.Remove(pagePath))

	second := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, second.Init())
	require.NoError(t, second.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: content,
	}))

	_, err = os.Stat(pagePath)
	require.NoError(t, err, "a deleted file is written again even when the hash matches")
}

func TestStore_ExistingFilePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, first.Init())
	require.NoError(t, first.SavePage(context.Background(), &docmirror.Page{
		URL:     "https://example.com/docs/guide",
		Title:   "Guide",
		Content: "# Guide",
	}))
	_, err := first.SaveMeta()
	require.NoError(t, err)

	second := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))
	require.NoError(t, second.Init())

	assert.Equal(t, filepath.Join(dir, "docs", "guide.md"), second.ExistingFilePath("https://example.com/docs/guide"))
	assert.Empty(t, second.ExistingFilePath("https://example.com/docs/unknown"))
}

func TestStore_Init_ToleratesCorruptPriorLedger(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fs.MetaFileName), []byte("{not json"), 0644))

	store := fs.NewStore("https://example.com/llms.txt", fs.WithDir(dir))

	require.NoError(t, store.Init())
	assert.False(t, store.HasUnchanged("https://example.com/docs/a", "abc"))
}
