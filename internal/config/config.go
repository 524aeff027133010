/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package config resolves run settings from defaults, an optional YAML file
// and RADIOCOMPOSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/radiocompose/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Page fetcher backends.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// Config covers everything a composition run needs.
type Config struct {
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
	FailFast    bool   `yaml:"fail_fast"`

	// Card layout
	Banks   int `yaml:"banks"`
	Files   int `yaml:"files"`
	Minutes int `yaml:"minutes"`

	// Composition
	Catalog   string  `yaml:"catalog"`
	Diversity int     `yaml:"diversity"`
	MaxSkips  int     `yaml:"skips"` // <= 0 means unlimited
	Crossfade float64 `yaml:"crossfade"`
	Workers   int     `yaml:"workers"`
	Seed      *uint64 `yaml:"seed"` // nil picks a time based seed
	SoxPath   string  `yaml:"sox_path"`
	TempDir   string  `yaml:"temp_dir"`

	// Catalog access
	Fetcher         string        `yaml:"fetcher"`
	BrowserHeadless bool          `yaml:"browser_headless"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`

	// Observability
	StatusBind        string  `yaml:"status_bind"` // empty disables the status server
	MetricsFile       string  `yaml:"metrics_file"`
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	// Object storage mirror
	S3Bucket          string `yaml:"s3_bucket"`
	S3Prefix          string `yaml:"s3_prefix"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"` // For S3-compatible services (MinIO, Spaces, etc.)
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style"`

	// Multi-host
	NATSURL       string `yaml:"nats_url"`
	NATSToken     string `yaml:"nats_token"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`

	LegacyEnvWarnings []string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Environment:       "production",
		Banks:             16,
		Files:             12,
		Minutes:           30,
		Catalog:           catalog.DefaultName,
		Diversity:         5,
		MaxSkips:          5,
		Crossfade:         2,
		Workers:           runtime.NumCPU(),
		SoxPath:           "sox",
		Fetcher:           FetcherHTTP,
		BrowserHeadless:   true,
		HTTPTimeout:       15 * time.Minute,
		OTLPEndpoint:      "localhost:4317",
		TracingSampleRate: 1.0,
		S3Region:          "us-east-1",
		RedisKey:          "radiocompose:sections",
	}
}

// Load applies the YAML file at path (or RADIOCOMPOSE_CONFIG when path is
// empty) and then environment variables over the defaults, and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("RADIOCOMPOSE_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnvAny([]string{"RADIOCOMPOSE_ENV"}, c.Environment)
	c.Debug = getEnvBoolAny([]string{"RADIOCOMPOSE_DEBUG"}, c.Debug)
	c.FailFast = getEnvBoolAny([]string{"RADIOCOMPOSE_FAIL_FAST"}, c.FailFast)

	c.Banks = getEnvIntAny([]string{"RADIOCOMPOSE_BANKS"}, c.Banks)
	c.Files = getEnvIntAny([]string{"RADIOCOMPOSE_FILES"}, c.Files)
	c.Minutes = getEnvIntAny([]string{"RADIOCOMPOSE_MINUTES"}, c.Minutes)

	c.Catalog = getEnvAny([]string{"RADIOCOMPOSE_CATALOG"}, c.Catalog)
	c.Diversity = getEnvIntAny([]string{"RADIOCOMPOSE_DIVERSITY"}, c.Diversity)
	c.MaxSkips = getEnvIntAny([]string{"RADIOCOMPOSE_SKIPS"}, c.MaxSkips)
	c.Crossfade = getEnvFloatAny([]string{"RADIOCOMPOSE_CROSSFADE"}, c.Crossfade)
	c.Workers = getEnvIntAny([]string{"RADIOCOMPOSE_WORKERS"}, c.Workers)
	if seed, ok := lookupEnvUintAny([]string{"RADIOCOMPOSE_SEED"}); ok {
		c.Seed = &seed
	}
	c.SoxPath = getEnvAny([]string{"RADIOCOMPOSE_SOX_PATH", "SOX_PATH"}, c.SoxPath)
	c.TempDir = getEnvAny([]string{"RADIOCOMPOSE_TEMP_DIR"}, c.TempDir)

	c.Fetcher = getEnvAny([]string{"RADIOCOMPOSE_FETCHER"}, c.Fetcher)
	c.BrowserHeadless = getEnvBoolAny([]string{"RADIOCOMPOSE_BROWSER_HEADLESS"}, c.BrowserHeadless)
	c.HTTPTimeout = getEnvDurationAny([]string{"RADIOCOMPOSE_HTTP_TIMEOUT"}, c.HTTPTimeout)

	c.StatusBind = getEnvAny([]string{"RADIOCOMPOSE_STATUS_BIND"}, c.StatusBind)
	c.MetricsFile = getEnvAny([]string{"RADIOCOMPOSE_METRICS_FILE"}, c.MetricsFile)
	c.TracingEnabled = getEnvBoolAny([]string{"RADIOCOMPOSE_TRACING_ENABLED"}, c.TracingEnabled)
	c.OTLPEndpoint = getEnvAny([]string{"RADIOCOMPOSE_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, c.OTLPEndpoint)
	c.TracingSampleRate = getEnvFloatAny([]string{"RADIOCOMPOSE_TRACING_SAMPLE_RATE"}, c.TracingSampleRate)

	c.S3Bucket = getEnvAny([]string{"RADIOCOMPOSE_S3_BUCKET"}, c.S3Bucket)
	c.S3Prefix = getEnvAny([]string{"RADIOCOMPOSE_S3_PREFIX"}, c.S3Prefix)
	c.S3Region = getEnvAny([]string{"RADIOCOMPOSE_S3_REGION", "AWS_REGION"}, c.S3Region)
	c.S3Endpoint = getEnvAny([]string{"RADIOCOMPOSE_S3_ENDPOINT", "S3_ENDPOINT"}, c.S3Endpoint)
	c.S3AccessKeyID = getEnvAny([]string{"RADIOCOMPOSE_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, c.S3AccessKeyID)
	c.S3SecretAccessKey = getEnvAny([]string{"RADIOCOMPOSE_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, c.S3SecretAccessKey)
	c.S3UsePathStyle = getEnvBoolAny([]string{"RADIOCOMPOSE_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, c.S3UsePathStyle)

	c.NATSURL = getEnvAny([]string{"RADIOCOMPOSE_NATS_URL"}, c.NATSURL)
	c.NATSToken = getEnvAny([]string{"RADIOCOMPOSE_NATS_TOKEN"}, c.NATSToken)
	c.RedisAddr = getEnvAny([]string{"RADIOCOMPOSE_REDIS_ADDR"}, c.RedisAddr)
	c.RedisPassword = getEnvAny([]string{"RADIOCOMPOSE_REDIS_PASSWORD"}, c.RedisPassword)
	c.RedisDB = getEnvIntAny([]string{"RADIOCOMPOSE_REDIS_DB"}, c.RedisDB)
	c.RedisKey = getEnvAny([]string{"RADIOCOMPOSE_REDIS_KEY"}, c.RedisKey)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"banks", c.Banks},
		{"files", c.Files},
		{"minutes", c.Minutes},
		{"diversity", c.Diversity},
		{"workers", c.Workers},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}
	if c.Crossfade < 0 {
		errs = append(errs, fmt.Errorf("crossfade must not be negative, got %v", c.Crossfade))
	}
	if !catalog.Known(c.Catalog) {
		errs = append(errs, fmt.Errorf("unknown catalog %q (available: %s)", c.Catalog, strings.Join(catalog.Names(), ", ")))
	}
	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherBrowser {
		errs = append(errs, fmt.Errorf("unknown fetcher %q (available: %s, %s)", c.Fetcher, FetcherHTTP, FetcherBrowser))
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing sample rate must be within [0, 1], got %v", c.TracingSampleRate))
	}
	if c.SoxPath == "" {
		errs = append(errs, errors.New("sox path must not be empty"))
	}
	return errors.Join(errs...)
}

// RunSeed returns the configured seed, zero included, or a clock based one
// when no seed was set.
func (c *Config) RunSeed() uint64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return uint64(time.Now().UnixNano())
}

// Strict reports whether the first failure should stop the run. Debug runs
// are always strict.
func (c *Config) Strict() bool {
	return c.FailFast || c.Debug
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"SOX_PATH": "use RADIOCOMPOSE_SOX_PATH",
		"DEBUG":    "use RADIOCOMPOSE_DEBUG or --debug",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// lookupEnvUintAny returns the first parseable unsigned value from keys, and
// whether one was found. Zero is a valid value.
func lookupEnvUintAny(keys []string) (uint64, bool) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

func getEnvDurationAny(keys []string, def time.Duration) time.Duration {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
		}
	}
	return def
}
