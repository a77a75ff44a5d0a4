package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Crawler *crawl.Crawler
	History docmirror.HistoryService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool   `short:"v" help:"Log every request"`
	LogFormat string `default:"text" enum:"text,json" help:"Log output format (text or json)"`

	Crawl CrawlCmd `cmd:"" help:"Crawl a documentation site into local markdown files"`
	Runs  RunsCmd  `cmd:"" help:"List archived crawl runs"`
	Show  ShowCmd  `cmd:"" help:"Show the ledger of an archived run"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL        string        `arg:"" help:"Manifest URL (llms.txt, llms-full.txt or sitemap.xml)"`
	Out        string        `short:"o" help:"Output directory (default: per-site dir under the user cache dir)"`
	DryRun     bool          `short:"n" help:"List the URLs that would be crawled without fetching pages"`
	Include    []string      `short:"i" help:"Keep only URLs matching this glob (repeatable)"`
	Exclude    []string      `short:"x" help:"Drop URLs matching this glob (repeatable)"`
	Rate       float64       `short:"r" default:"1" help:"Request pacing in requests per second"`
	Timeout    time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Retries    int           `default:"3" help:"Transport retries per page"`
	UserAgent  string        `default:"docmirror/1.0" help:"User-Agent header, also used to match robots.txt groups"`
	FailClosed bool          `help:"Treat an unreadable robots.txt as disallowing everything"`
	Extractor  string        `default:"goquery" enum:"goquery,trafilatura,readability" help:"HTML content extractor"`
	NoHistory  bool          `help:"Skip archiving the run ledger"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Origin string `arg:"" optional:"" help:"Restrict the listing to one origin"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	RunID string `arg:"" help:"Run ID to show"`
}
