package crawl_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixPattern matches URLs by prefix, standing in for compiled globs.
type prefixPattern string

func (p prefixPattern) Match(url string) bool {
	return strings.HasPrefix(url, string(p))
}

func allowAllRobots() *mock.RobotsService {
	return &mock.RobotsService{
		PolicyFn: func(ctx context.Context, pageURL string) *docmirror.RobotsPolicy {
			return &docmirror.RobotsPolicy{Allow: func(path string) bool { return true }}
		},
	}
}

func htmlFetcher(status int) *mock.Fetcher {
	return &mock.Fetcher{
		FetchWithRetryFn: func(ctx context.Context, rawURL string, retries int) (*docmirror.FetchResult, error) {
			return &docmirror.FetchResult{
				StatusCode:  status,
				Body:        []byte("<html><body><h1>Doc</h1><p>Text</p></body></html>"),
				ContentType: "text/html; charset=utf-8",
				FinalURL:    rawURL,
			}, nil
		},
	}
}

func staticExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html, pageURL string) (*docmirror.ExtractResult, error) {
			return &docmirror.ExtractResult{Title: "Doc", ContentHTML: "<h1>Doc</h1><p>Text</p>"}, nil
		},
	}
}

func staticConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return "# Doc\n\nText", nil
		},
	}
}

func indexManifest(urls ...string) *mock.ManifestService {
	return &mock.ManifestService{
		ResolveFn: func(ctx context.Context, rawURL string) (*docmirror.ManifestResolution, error) {
			return &docmirror.ManifestResolution{Kind: docmirror.ManifestIndex, URLs: urls}, nil
		},
	}
}

func recordingStore(saved *[]*docmirror.Page) *mock.Store {
	return &mock.Store{
		InitFn:      func() error { return nil },
		SetSourceFn: func(kind docmirror.ManifestKind) {},
		SavePageFn: func(ctx context.Context, page *docmirror.Page) error {
			*saved = append(*saved, page)
			return nil
		},
		RecordFailureFn: func(url string, status int) {},
		HasUnchangedFn:  func(url, hash string) bool { return false },
		SaveMetaFn: func() (*docmirror.Ledger, error) {
			return &docmirror.Ledger{RunID: "run-1"}, nil
		},
	}
}

func TestCrawler_Run_crawls_manifest_pages_into_the_store(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	var source docmirror.ManifestKind
	store := recordingStore(&saved)
	store.SetSourceFn = func(kind docmirror.ManifestKind) { source = kind }

	crawler := &crawl.Crawler{
		Manifests: indexManifest(
			"https://example.com/llms.txt",
			"https://example.com/docs/a",
			"https://example.com/docs/b",
		),
		Robots:    allowAllRobots(),
		Fetcher:   htmlFetcher(200),
		Extractor: staticExtractor(),
		Converter: staticConverter(),
		Frontier:  crawl.NewFrontier(1000),
		Store:     store,
	}

	var events []crawl.ProgressEvent
	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, func(event crawl.ProgressEvent) {
		events = append(events, event)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "run-1", result.Ledger.RunID)
	assert.Equal(t, docmirror.ManifestIndex, source)

	require.Len(t, saved, 2, "the manifest URL itself is not crawled")
	assert.Equal(t, "https://example.com/docs/a", saved[0].URL)
	assert.Equal(t, "Doc", saved[0].Title)
	assert.Equal(t, "# Doc\n\nText", saved[0].Content)
	assert.Equal(t, "https://example.com/docs/b", saved[1].URL)

	require.NotEmpty(t, events)
	assert.Equal(t, crawl.ProgressStarted, events[0].Type)
	assert.Equal(t, 2, events[0].Total)
	assert.Equal(t, crawl.ProgressFinished, events[len(events)-1].Type)
}

func TestCrawler_Run_dry_run_reports_URLs_without_fetching(t *testing.T) {
	t.Parallel()

	crawler := &crawl.Crawler{
		Manifests: indexManifest(
			"https://example.com/docs/a",
			"https://example.com/docs/b",
		),
		Fetcher: &mock.Fetcher{
			FetchWithRetryFn: func(ctx context.Context, rawURL string, retries int) (*docmirror.FetchResult, error) {
				t.Fatal("dry run must not fetch pages")
				return nil, nil
			},
		},
		Store: &mock.Store{
			InitFn: func() error {
				t.Fatal("dry run must not initialize the store")
				return nil
			},
		},
		Frontier: crawl.NewFrontier(1000),
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{DryRun: true}, nil)

	require.NoError(t, err)
	assert.Nil(t, result.Ledger)
	assert.Equal(t, []string{
		"https://example.com/docs/a",
		"https://example.com/docs/b",
	}, result.DryRunURLs)
}

func TestCrawler_Run_filters_discovered_URLs(t *testing.T) {
	t.Parallel()

	crawler := &crawl.Crawler{
		Manifests: indexManifest(
			"https://example.com/docs/api/a",
			"https://example.com/blog/post",
			"https://example.com/docs/api/b",
		),
		Frontier: crawl.NewFrontier(1000),
	}

	filter := &docmirror.URLFilter{
		Include: []docmirror.URLPattern{prefixPattern("https://example.com/docs/")},
	}
	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{Filter: filter, DryRun: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/docs/api/a",
		"https://example.com/docs/api/b",
	}, result.DryRunURLs)
}

func TestCrawler_Run_skips_disallowed_pages_without_a_ledger_record(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	store := recordingStore(&saved)
	store.RecordFailureFn = func(url string, status int) {
		t.Fatalf("disallowed page %s must not be recorded as a failure", url)
	}

	crawler := &crawl.Crawler{
		Manifests: indexManifest(
			"https://example.com/docs/public",
			"https://example.com/private/secret",
		),
		Robots: &mock.RobotsService{
			PolicyFn: func(ctx context.Context, pageURL string) *docmirror.RobotsPolicy {
				return &docmirror.RobotsPolicy{
					Allow: func(path string) bool {
						return !strings.HasPrefix(path, "/private/")
					},
				}
			},
		},
		Fetcher:   htmlFetcher(200),
		Extractor: staticExtractor(),
		Converter: staticConverter(),
		Frontier:  crawl.NewFrontier(1000),
		Store:     store,
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, saved, 1)
	assert.Equal(t, "https://example.com/docs/public", saved[0].URL)
}

func TestCrawler_Run_records_failures_and_continues(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	type failure struct {
		url    string
		status int
	}
	var failures []failure
	store := recordingStore(&saved)
	store.RecordFailureFn = func(url string, status int) {
		failures = append(failures, failure{url, status})
	}

	crawler := &crawl.Crawler{
		Manifests: indexManifest(
			"https://example.com/docs/gone",
			"https://example.com/docs/ok",
		),
		Robots: allowAllRobots(),
		Fetcher: &mock.Fetcher{
			FetchWithRetryFn: func(ctx context.Context, rawURL string, retries int) (*docmirror.FetchResult, error) {
				if strings.HasSuffix(rawURL, "/gone") {
					return nil, docmirror.HTTPErrorf(404, docmirror.ENOTFOUND, "HTTP 404 for %s", rawURL)
				}
				return &docmirror.FetchResult{
					StatusCode:  200,
					Body:        []byte("# Ok"),
					ContentType: "text/markdown",
					FinalURL:    rawURL,
				}, nil
			},
		},
		Frontier: crawl.NewFrontier(1000),
		Store:    store,
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, nil)

	require.NoError(t, err, "a failed page does not abort the run")
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, failures, 1)
	assert.Equal(t, "https://example.com/docs/gone", failures[0].url)
	assert.Equal(t, 404, failures[0].status)
	require.Len(t, saved, 1)
	assert.Equal(t, "https://example.com/docs/ok", saved[0].URL)
}

func TestCrawler_Run_requeues_unavailable_pages_until_the_ceiling(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	var attempts int
	var failedStatus int
	store := recordingStore(&saved)
	store.RecordFailureFn = func(url string, status int) { failedStatus = status }

	crawler := &crawl.Crawler{
		Manifests: indexManifest("https://example.com/docs/flaky"),
		Robots:    allowAllRobots(),
		Fetcher: &mock.Fetcher{
			FetchWithRetryFn: func(ctx context.Context, rawURL string, retries int) (*docmirror.FetchResult, error) {
				attempts++
				return nil, docmirror.HTTPErrorf(503, docmirror.EUNAVAILABLE, "HTTP 503 for %s", rawURL)
			},
		},
		Frontier: crawl.NewFrontier(1000),
		Store:    store,
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, docmirror.MaxTargetRetries+1, attempts)
	assert.Equal(t, 503, failedStatus)
	assert.Empty(t, saved)
}

func TestCrawler_Run_passes_markdown_responses_through(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	store := recordingStore(&saved)

	crawler := &crawl.Crawler{
		Manifests: indexManifest("https://example.com/docs/guide"),
		Robots:    allowAllRobots(),
		Fetcher: &mock.Fetcher{
			FetchWithRetryFn: func(ctx context.Context, rawURL string, retries int) (*docmirror.FetchResult, error) {
				return &docmirror.FetchResult{
					StatusCode:  200,
					Body:        []byte("# Guide\n\nAlready markdown."),
					ContentType: "text/markdown; charset=utf-8",
					FinalURL:    rawURL,
				}, nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html, pageURL string) (*docmirror.ExtractResult, error) {
				t.Fatal("markdown responses must not go through extraction")
				return nil, nil
			},
		},
		Frontier: crawl.NewFrontier(1000),
		Store:    store,
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	require.Len(t, saved, 1)
	assert.Equal(t, "Guide", saved[0].Title)
	assert.Equal(t, "# Guide\n\nAlready markdown.", saved[0].Content)
}

func TestCrawler_Run_flags_unchanged_pages(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	store := recordingStore(&saved)
	store.HasUnchangedFn = func(url, hash string) bool { return true }

	crawler := &crawl.Crawler{
		Manifests: indexManifest("https://example.com/docs/stable"),
		Robots:    allowAllRobots(),
		Fetcher:   htmlFetcher(200),
		Extractor: staticExtractor(),
		Converter: staticConverter(),
		Frontier:  crawl.NewFrontier(1000),
		Store:     store,
	}

	var completed []crawl.ProgressEvent
	_, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, func(event crawl.ProgressEvent) {
		if event.Type == crawl.ProgressCompleted {
			completed = append(completed, event)
		}
	})

	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.True(t, completed[0].Unchanged)
	assert.Len(t, saved, 1, "unchanged pages still go through the store")
}

func TestCrawler_Run_records_extraction_failures(t *testing.T) {
	t.Parallel()

	var saved []*docmirror.Page
	var failedStatus int
	store := recordingStore(&saved)
	store.RecordFailureFn = func(url string, status int) { failedStatus = status }

	crawler := &crawl.Crawler{
		Manifests: indexManifest("https://example.com/docs/broken"),
		Robots:    allowAllRobots(),
		Fetcher:   htmlFetcher(200),
		Extractor: &mock.Extractor{
			ExtractFn: func(html, pageURL string) (*docmirror.ExtractResult, error) {
				return nil, docmirror.Errorf(docmirror.EINVALID, "no content found")
			},
		},
		Frontier: crawl.NewFrontier(1000),
		Store:    store,
	}

	result, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 200, failedStatus, "extraction failures record the fetch status")
	assert.Empty(t, saved)
}

func TestCrawler_Run_slows_down_for_robots_crawl_delay(t *testing.T) {
	t.Parallel()

	var rates []float64
	queue := []docmirror.Target{{URL: "https://example.com/docs/a"}}

	frontier := &mock.Frontier{
		AddAllFn: func(urls []string, excludeURL string) int { return len(urls) },
		NextFn: func(ctx context.Context) (docmirror.Target, bool) {
			if len(queue) == 0 {
				return docmirror.Target{}, false
			}
			target := queue[0]
			queue = queue[1:]
			return target, true
		},
		SetRateFn:     func(rps float64) { rates = append(rates, rps) },
		MarkVisitedFn: func(url string) {},
	}

	var saved []*docmirror.Page
	crawler := &crawl.Crawler{
		Manifests: indexManifest("https://example.com/docs/a"),
		Robots: &mock.RobotsService{
			PolicyFn: func(ctx context.Context, pageURL string) *docmirror.RobotsPolicy {
				return &docmirror.RobotsPolicy{
					Allow:      func(path string) bool { return true },
					CrawlDelay: 2 * time.Second,
				}
			},
		},
		Fetcher:   htmlFetcher(200),
		Extractor: staticExtractor(),
		Converter: staticConverter(),
		Frontier:  frontier,
		Store:     recordingStore(&saved),
	}

	_, err := crawler.Run(context.Background(), "https://example.com/llms.txt", crawl.Options{Rate: 10}, nil)

	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0.5}, rates, "a 2s crawl delay caps the rate at 0.5 rps")
}

func TestCrawler_Run_wraps_manifest_resolution_errors(t *testing.T) {
	t.Parallel()

	crawler := &crawl.Crawler{
		Manifests: &mock.ManifestService{
			ResolveFn: func(ctx context.Context, rawURL string) (*docmirror.ManifestResolution, error) {
				return nil, docmirror.Errorf(docmirror.EINVALID, "unsupported manifest")
			},
		},
	}

	_, err := crawler.Run(context.Background(), "https://example.com/feed.xml", crawl.Options{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving manifest")
	assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
}
