package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/fs"
	"github.com/fwojciec/docmirror/goquery"
	"github.com/fwojciec/docmirror/htmltomarkdown"
	dochttp "github.com/fwojciec/docmirror/http"
	"github.com/fwojciec/docmirror/manifest"
	"github.com/fwojciec/docmirror/readability"
	docslog "github.com/fwojciec/docmirror/slog"
	"github.com/fwojciec/docmirror/sqlite"
	"github.com/fwojciec/docmirror/trafilatura"
	"github.com/lmittmann/tint"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// History database path. Set before calling Run().
	HistoryPath string

	// SQLite database used by the history service.
	DB *sqlite.DB

	// History service for end-to-end testing.
	History docmirror.HistoryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		HistoryPath: defaultHistoryPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docmirror"),
		kong.Description("Mirror documentation sites into a local markdown corpus"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docmirror --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := setupLogger(stderr, cli.LogFormat, cli.Verbose)

	// Open the history database. A crawl with --no-history never
	// touches it.
	if cmd != "crawl" || !cli.Crawl.NoHistory {
		m.DB = sqlite.NewDB(m.HistoryPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DOCMIRROR_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.HistoryPath, err)
		}
		defer m.Close()

		m.History = sqlite.NewHistoryService(m.DB)
		deps.History = m.History
	}

	// Wire crawl services only when crawling
	if cmd == "crawl" {
		fetcher := docslog.NewLoggingFetcher(dochttp.NewFetcher(
			dochttp.WithTimeout(cli.Crawl.Timeout),
			dochttp.WithUserAgent(cli.Crawl.UserAgent),
		), logger)
		defer fetcher.Close()

		guardOpts := []dochttp.GuardOption{dochttp.WithAgent(cli.Crawl.UserAgent)}
		if cli.Crawl.FailClosed {
			guardOpts = append(guardOpts, dochttp.WithFailClosed())
		}

		var storeOpts []fs.StoreOption
		if cli.Crawl.Out != "" {
			storeOpts = append(storeOpts, fs.WithDir(cli.Crawl.Out))
		}

		deps.Crawler = &crawl.Crawler{
			Manifests:   docslog.NewLoggingManifestService(manifest.NewResolver(fetcher), logger),
			Robots:      docslog.NewLoggingRobotsService(dochttp.NewRobotsGuard(fetcher, guardOpts...), logger),
			Fetcher:     fetcher,
			Extractor:   newExtractor(cli.Crawl.Extractor),
			Converter:   htmltomarkdown.NewConverter(),
			Frontier:    crawl.NewFrontier(cli.Crawl.Rate),
			Store:       fs.NewStore(cli.Crawl.URL, storeOpts...),
			RetryBudget: cli.Crawl.Retries,
		}
	}

	return kongCtx.Run(deps)
}

// newExtractor selects the HTML content extractor implementation.
func newExtractor(name string) docmirror.Extractor {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	default:
		return goquery.NewExtractor()
	}
}

// setupLogger builds the logger services log through. Request-level
// lines log at info and stay hidden unless verbose is set.
func setupLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: os.Getenv("NO_COLOR") != "",
	}))
}

func defaultHistoryPath() string {
	if path := os.Getenv("DOCMIRROR_DB"); path != "" {
		return path
	}
	dir := filepath.Join(xdg.DataHome, "docmirror")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}
