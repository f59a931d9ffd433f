// Package config defines service configuration structures and loading hooks.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is where the rating store keeps its database. Empty means
	// in-memory, which is useful for local runs and tests.
	DataDir string `koanf:"data_dir"`

	// CityCatalog points at the JSON embedding catalog driving /next-city.
	// Empty disables recommendations.
	CityCatalog string `koanf:"city_catalog"`

	// SessionTimeoutSeconds bounds how long a comparison flow may idle
	// before it expires.
	SessionTimeoutSeconds int `koanf:"session_timeout_seconds"`

	// KFactor is the Elo K applied to personal rating updates.
	KFactor float64 `koanf:"k_factor"`

	// CommitQueueSize bounds the in-memory commit queue.
	CommitQueueSize int `koanf:"commit_queue_size"`

	// CommitWorkers sets the number of persistence workers.
	CommitWorkers int `koanf:"commit_workers"`

	// UnsplashAccessKey authenticates city image lookups. Empty disables
	// the /city-image endpoint.
	UnsplashAccessKey string `koanf:"unsplash_access_key"`

	// UnsplashBaseURL overrides the image API host. Used by tests.
	UnsplashBaseURL string `koanf:"unsplash_base_url"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8080",
		SessionTimeoutSeconds: 300,
		KFactor:               32,
		CommitQueueSize:       1024,
		CommitWorkers:         runtime.NumCPU(),
	}
}
