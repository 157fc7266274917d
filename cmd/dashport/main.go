// Package main implements the dashport CLI: it scrapes the dashboard's
// usage-metrics APIs into CSV exports and per-user JSON reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	service "github.com/okian/dashport/internal/app"

	"github.com/okian/dashport/internal/adapters/cookiefile"
	"github.com/okian/dashport/internal/adapters/dashboard"
	"github.com/okian/dashport/internal/config"
	"github.com/okian/dashport/internal/domain/window"
	"github.com/okian/dashport/pkg/logger"
	"github.com/okian/dashport/pkg/metrics"
)

// dateLayout is the calendar-date format accepted on the command line.
const dateLayout = "01-02-2006"

var version = "dev"

var (
	logLevel string
	outFile  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, dashboard.ErrAuthExpired) {
			fmt.Fprintln(os.Stderr, "session expired: run `dashport auth` with fresh browser cookies")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dashport [start-date] [end-date]",
	Short: "Export dashboard usage metrics to CSV",
	Long: `dashport fetches usage metrics from the dashboard's internal APIs
using session cookies captured from a browser and writes them to CSV.

Dates are MM-DD-YYYY. With no dates the configured lookback window is
exported; one date exports that single day; two dates export the
inclusive range.

Examples:
  # Last 30 days (default lookback)
  dashport

  # One day
  dashport 10-22-2025

  # Inclusive range
  dashport 10-01-2025 10-31-2025`,
	Version:       version,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&outFile, "out", "", "output filename (default derived from the date range)")
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup loads configuration and initializes logging; every subcommand
// starts here.
func setup(ctx context.Context) (*config.Config, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}
	return cfg, nil
}

// serveMetrics exposes the Prometheus registry for the duration of the
// run. Scrape targets are only useful for long batch runs; errors here
// never fail the pipeline.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Get().Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}

// newClient builds the dashboard client from stored cookies.
func newClient(cfg *config.Config) (*dashboard.Client, error) {
	store, err := cookiefile.New(cfg.CookieFile)
	if err != nil {
		return nil, err
	}
	cookies, err := store.Load()
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no session cookies at %s: run `dashport auth` first", cfg.CookieFile)
	}

	return dashboard.New(cfg.BaseURL, cookies,
		dashboard.WithEndpoints(cfg.Endpoints()),
		dashboard.WithRetries(cfg.MaxRetries, time.Duration(cfg.RetryBackoffMS)*time.Millisecond),
		dashboard.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second}),
	), nil
}

// parseWindow maps the positional date arguments onto a query window.
func parseWindow(args []string, lookbackDays int, now time.Time) (window.Window, error) {
	switch len(args) {
	case 0:
		return window.Lookback(lookbackDays, now), nil
	case 1:
		date, err := time.Parse(dateLayout, args[0])
		if err != nil {
			return window.Window{}, fmt.Errorf("invalid date %q: expected MM-DD-YYYY", args[0])
		}
		return window.SingleDay(date, now), nil
	default:
		start, err := time.Parse(dateLayout, args[0])
		if err != nil {
			return window.Window{}, fmt.Errorf("invalid start date %q: expected MM-DD-YYYY", args[0])
		}
		end, err := time.Parse(dateLayout, args[1])
		if err != nil {
			return window.Window{}, fmt.Errorf("invalid end date %q: expected MM-DD-YYYY", args[1])
		}
		if end.Before(start) {
			return window.Window{}, fmt.Errorf("end date %s precedes start date %s", args[1], args[0])
		}
		return window.Range(start, end), nil
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	win, err := parseWindow(args, cfg.LookbackDays, time.Now())
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithFetcher(client),
		service.WithExportDir(cfg.ExportDir),
		service.WithEnterpriseID(cfg.EnterpriseID),
	)

	path, err := svc.Export(ctx, win, outFile)
	if err != nil {
		return err
	}

	fmt.Printf("exported %s .. %s -> %s\n", win.StartDay(), win.EndDay(), path)
	return nil
}
