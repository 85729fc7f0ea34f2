package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/blockmodel"
	"github.com/fwojciec/domsift/dtree"
	"github.com/fwojciec/domsift/extract"
	"github.com/fwojciec/domsift/forest"
	"github.com/fwojciec/domsift/fs"
	"github.com/fwojciec/domsift/goquery"
	"github.com/fwojciec/domsift/htmltomarkdown"
	domhttp "github.com/fwojciec/domsift/http"
	"github.com/fwojciec/domsift/logreg"
	"github.com/fwojciec/domsift/readability"
	"github.com/fwojciec/domsift/rod"
	domslog "github.com/fwojciec/domsift/slog"
	"github.com/fwojciec/domsift/sqlite"
	"github.com/fwojciec/domsift/trafilatura"
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
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService domsift.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
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
		kong.Name("domsift"),
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
		return fmt.Errorf("no command specified. Run 'domsift --help' to see available commands")
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

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOMSIFT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Service calls log at Info; the default level keeps them quiet
	// unless --verbose is set.
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Wire core services into dependencies
	m.RunService = sqlite.NewRunService(m.DB)
	deps.Runs = domslog.NewLoggingRunService(m.RunService, logger)
	deps.Sitemaps = domslog.NewLoggingSitemapService(domhttp.NewSitemapService(nil), logger)
	deps.Estimators = newEstimatorRegistry()

	// Wire command-specific dependencies based on command
	if cmd == "features" {
		featurizer, err := goquery.NewFeaturizer(
			goquery.WithDepth(cli.Features.Depth),
			goquery.WithHeight(cli.Features.Height),
		)
		if err != nil {
			return err
		}
		deps.Featurizer = domslog.NewLoggingFeaturizer(featurizer, logger)
	}

	if cmd == "extract" {
		var fetcher domsift.Fetcher
		if cli.Extract.Browser {
			fetcher, err = rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
		} else {
			fetcher = domhttp.NewFetcher()
		}
		fetcher = domslog.NewLoggingFetcher(domhttp.NewRetryFetcher(fetcher, nil), logger)
		defer fetcher.Close()

		extractor, err := newExtractor(cli.Extract.Extractor, cli.Extract.Model)
		if err != nil {
			return err
		}

		deps.Runner = &extract.Runner{
			Sitemaps:  deps.Sitemaps,
			Fetcher:   fetcher,
			Extractor: domslog.NewLoggingExtractor(cli.Extract.Extractor, extractor, logger),
			Converter: htmltomarkdown.NewConverter(),
			// 1 request per second per domain.
			RateLimiter: extract.NewDomainLimiter(1.0),
			Concurrency: cli.Extract.Concurrency,
		}
		if cli.Extract.Out != "" {
			deps.Runner.Pages = fs.NewFileStore(filepath.Dir(cli.Extract.Out), filepath.Base(cli.Extract.Out))
		}
	}

	return kongCtx.Run(deps)
}

// newEstimatorRegistry registers the trainable estimator families.
func newEstimatorRegistry() *domsift.EstimatorRegistry {
	registry := domsift.NewEstimatorRegistry()
	registry.Register(logreg.Factory{})
	registry.Register(dtree.Factory{})
	registry.Register(forest.Factory{})
	return registry
}

// newExtractor resolves the --extractor flag. The blockmodel extractor
// loads a trained model and featurizes pages with the default schema,
// which must match the schema the model was fitted on.
func newExtractor(name, modelFile string) (domsift.Extractor, error) {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor(), nil
	case "readability":
		return readability.NewExtractor(), nil
	case "blockmodel":
		if modelFile == "" {
			return nil, fmt.Errorf("the blockmodel extractor requires --model")
		}
		model, err := fs.LoadModel(modelFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
		featurizer, err := goquery.NewFeaturizer()
		if err != nil {
			return nil, err
		}
		return blockmodel.NewExtractor(model, featurizer)
	default:
		return nil, fmt.Errorf("unknown extractor %q (available: blockmodel, readability, trafilatura)", name)
	}
}

func defaultDBPath() string {
	if path := os.Getenv("DOMSIFT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "domsift.db"
	}
	dir := filepath.Join(home, ".domsift")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "domsift.db")
}
