package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds crawler and analysis configuration.
type Config struct {
	BaseURL            string
	PagePattern        string // listing page filename template, e.g. page-%d.html
	Delay              time.Duration
	Timeout            time.Duration
	TargetCategories   []string
	OutputFile         string
	OutputFormat       string // csv, json, sqlite, or dual
	SQLiteFile         string
	Workers            int
	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int
	UserAgent          string
	MetricsAddr        string
	ListenAddr         string
	Verbose            bool
}

// DefaultConfig returns conservative defaults for the demo catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://books.toscrape.com/catalogue/",
		PagePattern:        "page-%d.html",
		Delay:              time.Second,
		Timeout:            10 * time.Second,
		TargetCategories:   []string{"Travel", "Mystery", "Historical Fiction", "Classics"},
		OutputFile:         "output/books_details.csv",
		OutputFormat:       "csv",
		SQLiteFile:         "output/books_details.sqlite",
		Workers:            1,
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      10000,
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		MetricsAddr:        "",
		ListenAddr:         ":8080",
		Verbose:            false,
	}
}

// PageURL resolves the listing URL for a 1-based page index.
func (c *Config) PageURL(page int) string {
	return c.BaseURL + fmt.Sprintf(c.PagePattern, page)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.PagePattern == "" {
		return fmt.Errorf("page pattern cannot be empty")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if len(c.TargetCategories) == 0 {
		return fmt.Errorf("target categories cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "sqlite", "dual":
	default:
		return fmt.Errorf("output format must be csv, json, sqlite, or dual")
	}
	if c.OutputFormat == "sqlite" || c.OutputFormat == "dual" {
		if c.SQLiteFile == "" {
			return fmt.Errorf("sqlite file cannot be empty for format %s", c.OutputFormat)
		}
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
