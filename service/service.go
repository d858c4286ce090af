// Package service wires the crawl, normalization, and persistence stages
// behind the single entry point the report layer calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/pipeline"
	"github.com/aluiziolira/go-book-analytics/scraper"
)

// ErrNoData signals an explicit "no data" condition: the crawl produced
// zero items, or zero records survived filtering. Callers never receive a
// silently empty dataset.
var ErrNoData = errors.New("no catalog data available")

// Service returns the catalog dataset, loading a persisted copy when one
// exists and crawling otherwise. The cache is explicit and owned here.
type Service struct {
	cfg      *config.Config
	cache    *dataset.Cache
	csvStore *dataset.CSVStore
	sqlStore *dataset.SQLiteStore
	scraper  *scraper.Scraper

	scrapeMu sync.Mutex
}

// New builds a service over cfg. The scraper is constructed once and reused
// across refreshes.
func New(cfg *config.Config) (*Service, error) {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise scraper: %w", err)
	}

	return &Service{
		cfg:      cfg,
		cache:    dataset.NewCache(),
		csvStore: dataset.NewCSVStore(cfg.OutputFile),
		sqlStore: dataset.NewSQLiteStore(cfg.SQLiteFile),
		scraper:  s,
	}, nil
}

// MetricsRegistry exposes the crawl metrics for the /metrics endpoint.
func (s *Service) MetricsRegistry() *prometheus.Registry {
	return s.scraper.Metrics.Registry
}

// Dataset returns the catalog dataset: cached copy first, then a persisted
// one, then a fresh crawl.
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	if ds, ok := s.cache.Get(); ok {
		return ds, nil
	}

	if ds, ok := s.loadPersisted(); ok {
		s.cache.Put(ds)
		return ds, nil
	}

	return s.scrape(ctx)
}

// Refresh invalidates the cache and rebuilds the dataset from a new crawl.
func (s *Service) Refresh(ctx context.Context) (*dataset.Dataset, error) {
	s.cache.Invalidate()
	return s.scrape(ctx)
}

func (s *Service) loadPersisted() (*dataset.Dataset, bool) {
	switch {
	case s.csvStore.Exists():
		ds, err := s.csvStore.Load()
		if err != nil {
			slog.Warn("failed to load persisted csv dataset, re-crawling", slog.Any("error", err))
			return nil, false
		}
		if ds.Len() == 0 {
			return nil, false
		}
		slog.Info("loaded persisted dataset", slog.String("path", s.csvStore.Path), slog.Int("records", ds.Len()))
		return ds, true
	case s.cfg.OutputFormat == "sqlite" && s.sqlStore.Exists():
		ds, err := s.sqlStore.Load()
		if err != nil {
			slog.Warn("failed to load persisted sqlite dataset, re-crawling", slog.Any("error", err))
			return nil, false
		}
		if ds.Len() == 0 {
			return nil, false
		}
		slog.Info("loaded persisted dataset", slog.String("path", s.sqlStore.Path), slog.Int("records", ds.Len()))
		return ds, true
	}
	return nil, false
}

func (s *Service) scrape(ctx context.Context) (*dataset.Dataset, error) {
	s.scrapeMu.Lock()
	defer s.scrapeMu.Unlock()

	writer, err := NewWriter(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	p, err := pipeline.NewPipeline(writer, s.cfg)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	p.Start(s.cfg.Workers)

	result, err := s.scraper.Run(ctx, p)
	if err != nil {
		p.Close()
		writer.Close()
		return nil, fmt.Errorf("crawl: %w", err)
	}

	if err := p.Close(); err != nil {
		writer.Close()
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := writer.Close(); err != nil {
		slog.Warn("close writer", slog.Any("error", err))
	}

	records := p.Records()
	slog.Info("crawl complete",
		slog.Int("pages", result.PageCount),
		slog.Int("items", result.ItemCount),
		slog.Int("skipped", result.SkippedCount),
		slog.Int("records", len(records)),
		slog.String("stop_reason", result.StopReason),
	)

	if result.ItemCount == 0 {
		return nil, fmt.Errorf("crawl yielded zero items: %w", ErrNoData)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records survived filtering: %w", ErrNoData)
	}

	ds := dataset.New(records)
	s.cache.Put(ds)
	return ds, nil
}

// NewWriter builds the output writer for the configured format.
func NewWriter(cfg *config.Config) (pipeline.OutputWriter, error) {
	switch cfg.OutputFormat {
	case "csv":
		return pipeline.NewCSVWriter(cfg.OutputFile)
	case "json":
		return pipeline.NewJSONWriter(cfg.OutputFile)
	case "sqlite":
		return pipeline.NewSQLiteWriter(cfg.SQLiteFile)
	case "dual":
		csvWriter, err := pipeline.NewCSVWriter(cfg.OutputFile)
		if err != nil {
			return nil, err
		}
		jsonFile := strings.TrimSuffix(cfg.OutputFile, ".csv") + ".json"
		jsonWriter, err := pipeline.NewJSONWriter(jsonFile)
		if err != nil {
			csvWriter.Close()
			return nil, err
		}
		return pipeline.NewMultiWriter(csvWriter, jsonWriter), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
}
