package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/glob"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	// Compile filters early so a bad pattern fails before any network work
	filter, err := glob.CompileFilter(c.Include, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	opts := crawl.Options{
		Filter: filter,
		Rate:   c.Rate,
		DryRun: c.DryRun,
	}

	// Dry run mode: show URLs without fetching or writing
	if c.DryRun {
		result, err := deps.Crawler.Run(deps.Ctx, c.URL, opts, nil)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
			return err
		}
		for _, u := range result.DryRunURLs {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Found %d URLs\n", event.Total)
		case crawl.ProgressCompleted, crawl.ProgressSkipped:
			fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", event.Completed, event.Total, crawl.TruncateURL(event.URL, 40))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "skip %s: %v\n", event.URL, event.Error)
			fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", event.Completed, event.Total, crawl.TruncateURL(event.URL, 40))
		case crawl.ProgressFinished:
			// Summary printed after the crawl completes
		}
	}

	result, err := deps.Crawler.Run(deps.Ctx, c.URL, opts, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		return err
	}

	// Clear progress line
	fmt.Fprintf(deps.Stdout, "\r%80s\r", "")

	fmt.Fprintf(deps.Stdout, "Saved %d pages (%s) to %s\n",
		result.Saved, crawl.FormatBytes(result.Bytes), deps.Crawler.Store.Dir())
	if result.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped %d pages disallowed by robots.txt\n", result.Skipped)
	}
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "Failed to fetch %d pages\n", result.Failed)
	}

	// Archive the run ledger. The corpus is already on disk, so a
	// failure here only costs the history entry.
	if deps.History != nil && result.Ledger != nil {
		if err := deps.History.SaveRun(deps.Ctx, result.Ledger); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: failed to archive run: %v\n", err)
		}
	}

	return nil
}
