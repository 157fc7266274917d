package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env in the working directory, loaded into the process environment
//  3. file (YAML) if DASHPORT_CONFIG is set
//  4. env (prefix DASHPORT_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	// Pull a local .env into the environment before the env provider runs.
	// Missing file is fine.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DASHPORT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: DASHPORT_BASE_URL, DASHPORT_LOOKBACK_DAYS, ...
	// Map env keys like DASHPORT_EXPORT_DIR -> export_dir (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DASHPORT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dashport_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	if cfg.ExportDir == "" {
		return nil, fmt.Errorf("%w: export_dir must not be empty", ErrInvalidConfig)
	}
	if cfg.LookbackDays <= 0 {
		return nil, fmt.Errorf("%w: lookback_days must be positive", ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
