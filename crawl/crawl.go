// Package crawl provides documentation ingestion orchestration.
// It coordinates manifest resolution, robots policy checks, paced
// fetching, normalization to markdown, and storage of documentation
// pages.
package crawl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fwojciec/docmirror"
)

// DefaultRetryBudget is how many transport retries a page fetch gets
// when none is configured.
const DefaultRetryBudget = 3

// Crawler orchestrates a documentation site ingestion run.
// Pages are processed one at a time in discovery order; a failed page is
// recorded in the ledger and never aborts the run.
type Crawler struct {
	Manifests docmirror.ManifestService
	Robots    docmirror.RobotsService
	Fetcher   docmirror.Fetcher
	Extractor docmirror.Extractor
	Converter docmirror.Converter
	Frontier  docmirror.Frontier
	Store     docmirror.Store

	// RetryBudget is the per-page transport retry budget.
	// Defaults to DefaultRetryBudget.
	RetryBudget int
}

// Options configures a single crawl run.
type Options struct {
	// Filter restricts discovered URLs; nil passes everything.
	Filter *docmirror.URLFilter

	// Rate is the pacing rate in requests per second.
	// Zero keeps the frontier's configured rate.
	Rate float64

	// DryRun stops after discovery and filtering, reporting the URLs
	// that would be crawled without fetching pages or writing files.
	DryRun bool
}

// Result holds the outcome of a crawl run.
type Result struct {
	// Ledger is the persisted run ledger, nil for dry runs.
	Ledger *docmirror.Ledger

	Saved   int
	Failed  int
	Skipped int
	Bytes   int

	// DryRunURLs lists the URLs a dry run would have crawled.
	DryRunURLs []string
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error

	// Unchanged marks a completed page whose content matched the
	// previous run.
	Unchanged bool
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// targetResult holds the outcome of processing a single target.
type targetResult struct {
	outcome   targetOutcome
	unchanged bool
	bytes     int
	err       error
}

type targetOutcome int

const (
	outcomeSaved targetOutcome = iota
	outcomeSkipped
	outcomeRequeued
	outcomeFailed
)

// Run executes a full ingestion run for the manifest URL.
// The progress callback, if provided, receives events as the run proceeds.
func (c *Crawler) Run(ctx context.Context, manifestURL string, opts Options, progress ProgressFunc) (*Result, error) {
	resolution, err := c.Manifests.Resolve(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest: %w", err)
	}

	urls := resolution.URLs
	if opts.Filter != nil {
		urls = opts.Filter.Apply(urls)
	}

	if opts.DryRun {
		return &Result{DryRunURLs: urls}, nil
	}

	if err := c.Store.Init(); err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	c.Store.SetSource(resolution.Kind)

	if opts.Rate > 0 {
		c.Frontier.SetRate(opts.Rate)
	}

	// The index manifest itself is not a page; a full dump is.
	excludeURL := manifestURL
	if resolution.Kind == docmirror.ManifestFull {
		excludeURL = ""
	}
	total := c.Frontier.AddAll(urls, excludeURL)

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	var result Result
	completed := 0
	delayApplied := false

	for {
		target, ok := c.Frontier.Next(ctx)
		if !ok {
			break
		}

		res := c.processTarget(ctx, target, opts.Rate, &delayApplied)

		switch res.outcome {
		case outcomeRequeued:
			continue
		case outcomeSaved:
			completed++
			result.Saved++
			result.Bytes += res.bytes
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressCompleted,
					Completed: completed,
					Total:     total,
					URL:       target.URL,
					Unchanged: res.unchanged,
				})
			}
		case outcomeSkipped:
			completed++
			result.Skipped++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressSkipped,
					Completed: completed,
					Total:     total,
					URL:       target.URL,
				})
			}
		case outcomeFailed:
			completed++
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: completed,
					Total:     total,
					URL:       target.URL,
					Error:     res.err,
				})
			}
		}
	}

	ledger, err := c.Store.SaveMeta()
	if err != nil {
		return nil, fmt.Errorf("saving run ledger: %w", err)
	}
	result.Ledger = ledger

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: completed, Total: total})
	}

	return &result, nil
}

// processTarget fetches, normalizes, and stores a single target.
func (c *Crawler) processTarget(ctx context.Context, target docmirror.Target, configuredRate float64, delayApplied *bool) targetResult {
	policy := c.Robots.Policy(ctx, target.URL)
	if policy != nil {
		if !*delayApplied {
			c.applyCrawlDelay(policy, configuredRate)
			*delayApplied = true
		}
		if !policy.Allow(urlPath(target.URL)) {
			c.Frontier.MarkVisited(target.URL)
			return targetResult{outcome: outcomeSkipped}
		}
	}

	res, err := c.Fetcher.FetchWithRetry(ctx, target.URL, c.retryBudget())
	if err != nil {
		if docmirror.ErrorCode(err) == docmirror.EUNAVAILABLE && c.Frontier.Retry(target) {
			return targetResult{outcome: outcomeRequeued}
		}
		c.Frontier.MarkVisited(target.URL)
		c.Store.RecordFailure(target.URL, docmirror.ErrorStatus(err))
		return targetResult{outcome: outcomeFailed, err: err}
	}

	page, err := c.normalize(res, target.URL)
	if err != nil {
		c.Frontier.MarkVisited(target.URL)
		c.Store.RecordFailure(target.URL, res.StatusCode)
		return targetResult{outcome: outcomeFailed, err: err}
	}

	unchanged := c.Store.HasUnchanged(target.URL, computeHash(page.Content))
	if err := c.Store.SavePage(ctx, page); err != nil {
		c.Frontier.MarkVisited(target.URL)
		c.Store.RecordFailure(target.URL, page.Status)
		return targetResult{outcome: outcomeFailed, err: err}
	}

	c.Frontier.MarkVisited(target.URL)
	return targetResult{outcome: outcomeSaved, unchanged: unchanged, bytes: len(page.Content)}
}

// normalize turns a fetched response into a markdown page.
// Markdown and plain text pass through with the first H1 as title;
// everything else goes through extraction and conversion.
func (c *Crawler) normalize(res *docmirror.FetchResult, pageURL string) (*docmirror.Page, error) {
	if isMarkdownContentType(contentMediaType(res)) {
		content := string(res.Body)
		return &docmirror.Page{
			URL:     pageURL,
			Title:   markdownTitle(content),
			Content: content,
			Status:  res.StatusCode,
		}, nil
	}

	extracted, err := c.Extractor.Extract(string(res.Body), pageURL)
	if err != nil {
		return nil, err
	}

	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	return &docmirror.Page{
		URL:     pageURL,
		Title:   extracted.Title,
		Content: markdown,
		Status:  res.StatusCode,
	}, nil
}

// applyCrawlDelay lowers the frontier rate when robots.txt requests a
// larger interval than the configured rate provides.
func (c *Crawler) applyCrawlDelay(policy *docmirror.RobotsPolicy, configuredRate float64) {
	if policy.CrawlDelay <= 0 {
		return
	}
	if configuredRate <= 0 {
		configuredRate = DefaultRate
	}
	delayRate := 1 / policy.CrawlDelay.Seconds()
	if delayRate < configuredRate {
		c.Frontier.SetRate(delayRate)
	}
}

func (c *Crawler) retryBudget() int {
	if c.RetryBudget > 0 {
		return c.RetryBudget
	}
	return DefaultRetryBudget
}

// urlPath extracts the path component checked against robots rules.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
