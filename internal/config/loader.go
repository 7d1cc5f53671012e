package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Default values applied before any file or environment override.
const (
	DefaultRatio          = 10
	DefaultBandwidth      = 3
	DefaultMetric         = "commonLines"
	DefaultObjective      = "maximize"
	DefaultLogLevel       = "info"
	DefaultPrometheusAddr = "127.0.0.1:9464"

	configName = ".gitlag"
	configType = "yaml"
	envPrefix  = "GITLAG"
)

// Load reads configuration from the given path, or from .gitlag.yaml in
// the working directory or home directory when path is empty. A missing
// file is not an error; defaults and GITLAG_ environment variables
// still apply.
func Load(path string) (*Config, error) {
	vpr := viper.New()

	applyDefaults(vpr)

	if path != "" {
		vpr.SetConfigFile(path)
	} else {
		vpr.SetConfigName(configName)
		vpr.SetConfigType(configType)
		vpr.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			vpr.AddConfigPath(home)
		}
	}

	vpr.SetEnvPrefix(envPrefix)
	vpr.AutomaticEnv()
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if readErr := vpr.ReadInConfig(); readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError

		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config file: %w", readErr)
		}
	}

	cfg := &Config{}
	if err := vpr.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(vpr *viper.Viper) {
	vpr.SetDefault("search.ratio", DefaultRatio)
	vpr.SetDefault("search.bandwidth", DefaultBandwidth)
	vpr.SetDefault("search.metric", DefaultMetric)
	vpr.SetDefault("search.objective", DefaultObjective)

	vpr.SetDefault("compare.skip_prefixes", []string{".git"})
	vpr.SetDefault("compare.skip_vendored", false)
	vpr.SetDefault("compare.diff_timeout", "0s")

	vpr.SetDefault("cache.enabled", true)
	vpr.SetDefault("cache.directory", "")

	vpr.SetDefault("checkout.scratch_dir", "")
	vpr.SetDefault("checkout.first_parent", false)

	vpr.SetDefault("logging.level", DefaultLogLevel)

	vpr.SetDefault("observability.enabled", false)
	vpr.SetDefault("observability.prometheus_addr", DefaultPrometheusAddr)
}
