// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load(ctx) layers sources on top.
// - The loaded Config is immutable by convention: constructed once in main and
//   passed by value into each component. No ambient global settings.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"strings"
)

// Endpoint names accepted in ScrapeEndpoints.
const (
	EndpointUserStats   = "user_stats"
	EndpointTenantStats = "tenant_stats"
	EndpointTenantMAU   = "tenant_mau"
)

// Endpoint pairs a short name with its API path.
type Endpoint struct {
	Name string
	Path string
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the dashboard origin the internal APIs live under.
	BaseURL string `koanf:"base_url"`

	// CookieFile stores the session cookies captured from the browser.
	CookieFile string `koanf:"cookie_file"`

	// ExportDir receives CSV and report artifacts.
	ExportDir string `koanf:"export_dir"`

	// RunLogPath is the sqlite file recording run history.
	RunLogPath string `koanf:"runlog_path"`

	// LookbackDays sets the default trailing window when no dates are given.
	LookbackDays int `koanf:"lookback_days"`

	// ScrapeEndpoints selects which endpoints to fetch: "all" or a
	// comma-separated subset of user_stats, tenant_stats, tenant_mau.
	ScrapeEndpoints string `koanf:"scrape_endpoints"`

	// Per-endpoint API paths.
	UserStatsEndpoint   string `koanf:"user_stats_endpoint"`
	TenantStatsEndpoint string `koanf:"tenant_stats_endpoint"`
	TenantMAUEndpoint   string `koanf:"tenant_mau_endpoint"`

	// EnterpriseID is stamped on every converted per-user report record.
	EnterpriseID string `koanf:"enterprise_id"`

	// HTTP behavior.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`
	MaxRetries            int `koanf:"max_retries"`
	RetryBackoffMS        int `koanf:"retry_backoff_ms"`

	// MetricsAddr, when non-empty, serves Prometheus metrics during a run,
	// e.g. ":9100".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		BaseURL:               "https://app.augmentcode.com",
		CookieFile:            "secrets/cookies.json",
		ExportDir:             "data",
		RunLogPath:            "data/runlog.db",
		LookbackDays:          30,
		ScrapeEndpoints:       "all",
		UserStatsEndpoint:     "/api/user-feature-stats",
		TenantStatsEndpoint:   "/api/tenant-feature-stats",
		TenantMAUEndpoint:     "/api/tenant-monthly-active-users",
		EnterpriseID:          "283613",
		RequestTimeoutSeconds: 30,
		MaxRetries:            3,
		RetryBackoffMS:        500,
	}
}

// Endpoints returns the (name, path) pairs selected by ScrapeEndpoints,
// in the fixed scrape order.
func (c *Config) Endpoints() []Endpoint {
	all := []Endpoint{
		{Name: EndpointUserStats, Path: c.UserStatsEndpoint},
		{Name: EndpointTenantStats, Path: c.TenantStatsEndpoint},
		{Name: EndpointTenantMAU, Path: c.TenantMAUEndpoint},
	}

	if strings.EqualFold(strings.TrimSpace(c.ScrapeEndpoints), "all") {
		return all
	}

	requested := make(map[string]bool)
	for _, name := range strings.Split(c.ScrapeEndpoints, ",") {
		requested[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var selected []Endpoint
	for _, ep := range all {
		if requested[ep.Name] {
			selected = append(selected, ep)
		}
	}
	return selected
}
