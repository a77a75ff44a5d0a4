package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.History.ListRuns(deps.Ctx, c.Origin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No archived runs. Use 'docmirror crawl' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d pages",
			r.RunID, r.CrawledAt.Format("2006-01-02 15:04"), r.Origin, r.Pages)
		if r.Failures > 0 {
			fmt.Fprintf(deps.Stdout, "  %d failed", r.Failures)
		}
		fmt.Fprintln(deps.Stdout)
	}

	return nil
}
