package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay schema. Pointer fields distinguish "not
// set" from zero values so the file only overrides what it mentions.
type fileConfig struct {
	BaseURL          *string  `yaml:"base_url"`
	PagePattern      *string  `yaml:"page_pattern"`
	DelaySeconds     *float64 `yaml:"delay_seconds"`
	TimeoutSeconds   *float64 `yaml:"timeout_seconds"`
	TargetCategories []string `yaml:"target_categories"`
	OutputFile       *string  `yaml:"output_file"`
	OutputFormat     *string  `yaml:"output_format"`
	SQLiteFile       *string  `yaml:"sqlite_file"`
	UserAgent        *string  `yaml:"user_agent"`
}

// ApplyFile overlays settings from a YAML file onto cfg.
func ApplyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.PagePattern != nil {
		cfg.PagePattern = *fc.PagePattern
	}
	if fc.DelaySeconds != nil {
		cfg.Delay = time.Duration(*fc.DelaySeconds * float64(time.Second))
	}
	if fc.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutSeconds * float64(time.Second))
	}
	if len(fc.TargetCategories) > 0 {
		cfg.TargetCategories = fc.TargetCategories
	}
	if fc.OutputFile != nil {
		cfg.OutputFile = *fc.OutputFile
	}
	if fc.OutputFormat != nil {
		cfg.OutputFormat = *fc.OutputFormat
	}
	if fc.SQLiteFile != nil {
		cfg.SQLiteFile = *fc.SQLiteFile
	}
	if fc.UserAgent != nil {
		cfg.UserAgent = *fc.UserAgent
	}

	return nil
}
