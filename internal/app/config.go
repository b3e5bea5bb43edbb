package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string

	LogFormat string
	LogLevel  string

	Jobs      int
	Parseable bool
	Verbose   bool
}

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if cfg.Parseable && cfg.Verbose {
		return nil, errors.New("parseable output and verbose output are mutually exclusive")
	}

	return &cfg, nil
}
