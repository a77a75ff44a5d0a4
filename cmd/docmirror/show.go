package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docmirror"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	ledger, err := deps.History.FindRun(deps.Ctx, c.RunID)
	if err != nil {
		if docmirror.ErrorCode(err) == docmirror.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'docmirror runs' to list archived runs.\n", c.RunID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run:     %s\n", ledger.RunID)
	fmt.Fprintf(deps.Stdout, "Origin:  %s\n", ledger.Origin)
	fmt.Fprintf(deps.Stdout, "Source:  %s\n", ledger.Source)
	fmt.Fprintf(deps.Stdout, "Crawled: %s\n", ledger.CrawledAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Pages:   %d\n\n", ledger.Pages)

	for _, rec := range ledger.URLs {
		if rec.File != "" {
			fmt.Fprintf(deps.Stdout, "  %d  %s  %s\n", rec.Status, rec.URL, rec.File)
		} else {
			fmt.Fprintf(deps.Stdout, "  %d  %s  (failed)\n", rec.Status, rec.URL)
		}
	}

	return nil
}
