package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/models"
	"github.com/aluiziolira/go-book-analytics/pipeline"
	"github.com/aluiziolira/go-book-analytics/scraper"
	"github.com/aluiziolira/go-book-analytics/service"
)

type options struct {
	BaseURL     string   `long:"base-url" env:"SCRAPER_BASE_URL" default:"https://books.toscrape.com/catalogue/" description:"Catalog base URL"`
	ConfigFile  string   `long:"config" env:"SCRAPER_CONFIG" description:"YAML config overlay file (takes precedence over flags)"`
	DelayMs     int      `long:"delay" env:"SCRAPER_DELAY_MS" default:"1000" description:"Politeness delay between page fetches (milliseconds)"`
	TimeoutSec  int      `long:"timeout" env:"SCRAPER_TIMEOUT_SEC" default:"10" description:"HTTP request timeout (seconds)"`
	Output      string   `long:"output" env:"SCRAPER_OUTPUT" default:"output/books_details.csv" description:"Output file path"`
	Format      string   `long:"format" env:"SCRAPER_FORMAT" default:"csv" description:"Output format: csv, json, sqlite, or dual"`
	SQLiteFile  string   `long:"sqlite-file" env:"SCRAPER_SQLITE" default:"output/books_details.sqlite" description:"SQLite output path (sqlite format)"`
	Categories  []string `long:"category" env:"SCRAPER_CATEGORIES" env-delim:"," description:"Target category to retain (repeatable)"`
	Workers     int      `long:"workers" env:"SCRAPER_WORKERS" default:"1" description:"Pipeline worker count"`
	MetricsAddr string   `long:"metrics-addr" env:"SCRAPER_METRICS_ADDR" description:"Prometheus metrics listen address (e.g. :9090)"`
	Verbose     bool     `long:"verbose" short:"v" env:"SCRAPER_VERBOSE" description:"Enable verbose logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger, level := newLogger(opts.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg, err := buildConfig(&opts)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.Any("categories", cfg.TargetCategories),
		slog.String("output", cfg.OutputFile),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := service.NewWriter(cfg)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing current page")
	}()

	var metricsServer *http.Server
	if opts.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    opts.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", opts.MetricsAddr))
	}

	p, err := pipeline.NewPipeline(writer, cfg)
	if err != nil {
		slog.Error("initialising pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	p.Start(cfg.Workers)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	startTime := time.Now()
	result, err := s.Run(ctx, p)
	if err != nil {
		slog.Error("scraping failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	records := p.Records()
	if err := writer.Close(); err != nil {
		slog.Error("close writer", slog.Any("error", err))
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if result.ItemCount == 0 || len(records) == 0 {
		slog.Error("no catalog data was collected",
			slog.Int("items", result.ItemCount),
			slog.Int("records", len(records)),
			slog.String("stop_reason", result.StopReason),
		)
		os.Exit(1)
	}

	printSummary(result, records, time.Since(startTime), cfg.OutputFile, p.GetMetrics())
}

func buildConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.BaseURL = opts.BaseURL
	cfg.Delay = time.Duration(opts.DelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(opts.TimeoutSec) * time.Second
	cfg.OutputFile = opts.Output
	cfg.OutputFormat = opts.Format
	cfg.SQLiteFile = opts.SQLiteFile
	cfg.Workers = opts.Workers
	cfg.MetricsAddr = opts.MetricsAddr
	cfg.Verbose = opts.Verbose
	if len(opts.Categories) > 0 {
		cfg.TargetCategories = opts.Categories
	}

	if opts.ConfigFile != "" {
		if err := config.ApplyFile(cfg, opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSummary(result *models.CrawlResult, records []*models.Record, duration time.Duration, outputFile string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	fmt.Printf("  Pages:         %d\n", result.PageCount)
	fmt.Printf("  Items:         %d\n", result.ItemCount)
	fmt.Printf("  Skipped:       %d\n", result.SkippedCount)
	fmt.Printf("  Records kept:  %d\n", len(records))
	fmt.Printf("  Stop reason:   %s\n", result.StopReason)
	if len(result.ErrorsByKind) > 0 {
		fmt.Printf("  Error kinds:   %v\n", result.ErrorsByKind)
	}
	if dropped, ok := metrics["dropped_records"].(map[string]int); ok && len(dropped) > 0 {
		fmt.Printf("  Dropped:       %v\n", dropped)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)

	fmt.Println("\nCategory distribution:")
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("  %-20s %d\n", category, counts[category])
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
