package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/aluiziolira/go-book-analytics/api"
	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/service"
)

type options struct {
	ListenAddr string   `long:"listen" env:"SERVER_LISTEN" default:":8080" description:"HTTP listen address"`
	BaseURL    string   `long:"base-url" env:"SCRAPER_BASE_URL" default:"https://books.toscrape.com/catalogue/" description:"Catalog base URL"`
	ConfigFile string   `long:"config" env:"SCRAPER_CONFIG" description:"YAML config overlay file (takes precedence over flags)"`
	DelayMs    int      `long:"delay" env:"SCRAPER_DELAY_MS" default:"1000" description:"Politeness delay between page fetches (milliseconds)"`
	Output     string   `long:"output" env:"SCRAPER_OUTPUT" default:"output/books_details.csv" description:"Persisted dataset path"`
	Format     string   `long:"format" env:"SCRAPER_FORMAT" default:"csv" description:"Output format: csv, json, sqlite, or dual"`
	SQLiteFile string   `long:"sqlite-file" env:"SCRAPER_SQLITE" default:"output/books_details.sqlite" description:"SQLite output path (sqlite format)"`
	Categories []string `long:"category" env:"SCRAPER_CATEGORIES" env-delim:"," description:"Target category to retain (repeatable)"`
	Verbose    bool     `long:"verbose" short:"v" env:"SCRAPER_VERBOSE" description:"Enable verbose logging"`
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

	logger := newLogger(opts.Verbose)
	slog.SetDefault(logger)

	cfg := config.DefaultConfig()
	cfg.BaseURL = opts.BaseURL
	cfg.Delay = time.Duration(opts.DelayMs) * time.Millisecond
	cfg.OutputFile = opts.Output
	cfg.OutputFormat = opts.Format
	cfg.SQLiteFile = opts.SQLiteFile
	cfg.ListenAddr = opts.ListenAddr
	cfg.Verbose = opts.Verbose
	if len(opts.Categories) > 0 {
		cfg.TargetCategories = opts.Categories
	}
	if opts.ConfigFile != "" {
		if err := config.ApplyFile(cfg, opts.ConfigFile); err != nil {
			slog.Error("loading config file", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	svc, err := service.New(cfg)
	if err != nil {
		slog.Error("initialising service", slog.Any("error", err))
		os.Exit(1)
	}

	router := api.NewServer(api.NewHandler(svc), svc.MetricsRegistry())
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a cold request may trigger a full crawl
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", slog.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", slog.Any("error", err))
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if info, err := os.Stdout.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
