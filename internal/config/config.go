// Package config loads and validates gitlag settings from YAML files
// and GITLAG_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
)

// Sentinel errors for configuration validation failures.
var (
	ErrInvalidRatio          = errors.New("search ratio must be at least 2")
	ErrInvalidBandwidth      = errors.New("search bandwidth must be at least 1")
	ErrInvalidMetric         = errors.New("unknown search metric")
	ErrInvalidObjective      = errors.New("unknown search objective")
	ErrInvalidLogLevel       = errors.New("unknown log level")
	ErrMissingPrometheusAddr = errors.New("observability enabled without a prometheus address")
)

// Config is the root configuration for gitlag.
type Config struct {
	Search        SearchConfig        `mapstructure:"search"`
	Compare       CompareConfig       `mapstructure:"compare"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Checkout      CheckoutConfig      `mapstructure:"checkout"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// SearchConfig tunes the closest-commit search.
type SearchConfig struct {
	// Ratio divides the current window to size each sampling step.
	Ratio int `mapstructure:"ratio"`

	// Bandwidth is the number of commits around the best sample that
	// the next round keeps.
	Bandwidth int `mapstructure:"bandwidth"`

	// Metric names the comparison counter the search optimizes.
	Metric string `mapstructure:"metric"`

	// Objective is "maximize" or "minimize".
	Objective string `mapstructure:"objective"`
}

// CompareConfig tunes the tree comparator.
type CompareConfig struct {
	// SkipPrefixes drops paths whose leading components match.
	SkipPrefixes []string `mapstructure:"skip_prefixes"`

	// SkipVendored drops paths enry classifies as vendored.
	SkipVendored bool `mapstructure:"skip_vendored"`

	// DiffTimeout bounds a single file diff. Zero means no limit.
	DiffTimeout time.Duration `mapstructure:"diff_timeout"`
}

// CacheConfig controls the on-disk history cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Directory overrides the default cache location when set.
	Directory string `mapstructure:"directory"`
}

// CheckoutConfig controls how revisions are materialized on disk.
type CheckoutConfig struct {
	// ScratchDir hosts isolated checkouts. Empty means the system
	// temporary directory.
	ScratchDir string `mapstructure:"scratch_dir"`

	// FirstParent walks only first-parent history.
	FirstParent bool `mapstructure:"first_parent"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ObservabilityConfig controls the metrics endpoint.
type ObservabilityConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// PrometheusAddr is the listen address for the /metrics endpoint.
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Search.Ratio < 2 {
		return fmt.Errorf("%w: %d", ErrInvalidRatio, c.Search.Ratio)
	}

	if c.Search.Bandwidth < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBandwidth, c.Search.Bandwidth)
	}

	if _, err := lagmetrics.ParseField(c.Search.Metric); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMetric, c.Search.Metric)
	}

	if _, err := lagmetrics.ParseExtremizer(c.Search.Objective); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidObjective, c.Search.Objective)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Observability.Enabled && c.Observability.PrometheusAddr == "" {
		return ErrMissingPrometheusAddr
	}

	return nil
}

// Field returns the parsed search metric. Call after Validate.
func (c SearchConfig) Field() lagmetrics.Field {
	field, err := lagmetrics.ParseField(c.Metric)
	if err != nil {
		return lagmetrics.FieldCommonLines
	}

	return field
}

// Extremizer returns the parsed search objective. Call after Validate.
func (c SearchConfig) Extremizer() lagmetrics.Extremizer {
	ext, err := lagmetrics.ParseExtremizer(c.Objective)
	if err != nil {
		return lagmetrics.Maximize
	}

	return ext
}

// SlogLevel maps the configured level name onto a slog.Level.
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	switch c.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level)
	}
}
