package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ELYSIAN_CONFIG is set
//  3. env (prefix ELYSIAN_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ELYSIAN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ELYSIAN_ADDR, ELYSIAN_COMMIT_WORKERS, ...
	// Keys map to the flat koanf tags, underscores preserved.
	envProvider := env.Provider("ELYSIAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "elysian_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SessionTimeoutSeconds <= 0:
		return fmt.Errorf("%w: session_timeout_seconds must be positive", ErrInvalidConfig)
	case c.KFactor <= 0:
		return fmt.Errorf("%w: k_factor must be positive", ErrInvalidConfig)
	case c.CommitQueueSize <= 0:
		return fmt.Errorf("%w: commit_queue_size must be positive", ErrInvalidConfig)
	case c.CommitWorkers <= 0:
		return fmt.Errorf("%w: commit_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
