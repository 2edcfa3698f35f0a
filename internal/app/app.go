package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/heartmarshall/mclang/internal/adapter/postgres"
	"github.com/heartmarshall/mclang/internal/adapter/postgres/term"
	"github.com/heartmarshall/mclang/internal/adapter/provider/mojang"
	"github.com/heartmarshall/mclang/internal/app/updater"
	"github.com/heartmarshall/mclang/internal/classifier"
	"github.com/heartmarshall/mclang/internal/config"
	"github.com/heartmarshall/mclang/internal/filter"
	"github.com/heartmarshall/mclang/internal/metrics"
)

// Compile-time interface assertions.
var (
	_ updater.Fetcher      = (*mojang.Client)(nil)
	_ updater.LocaleFilter = (*filter.Filter)(nil)
	_ updater.TermRepo     = (*term.Repo)(nil)
	_ updater.TxRunner     = (*postgres.TxManager)(nil)
)

// Options are command-line overrides applied on top of the loaded config.
// Empty fields keep the configured value.
type Options struct {
	Phases  string
	Locales string
	RuleSet string
	DryRun  bool
}

// Run loads configuration, wires the updater and executes the requested
// phases. It returns false when any phase or locale failed.
func Run(ctx context.Context, opts Options) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return false, fmt.Errorf("load config: %w", err)
	}
	if err := applyOptions(cfg, opts); err != nil {
		return false, err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting langupdate",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("ruleset", cfg.Filter.RuleSet),
	)

	phases, err := updater.ParsePhases(opts.Phases)
	if err != nil {
		return false, err
	}

	rules, err := classifier.ByName(cfg.Filter.RuleSet)
	if err != nil {
		return false, err
	}

	m, err := metrics.New()
	if err != nil {
		return false, err
	}

	deps := updater.Deps{
		Fetcher: mojang.NewClient(logger, mojang.Config{
			ManifestURL:  cfg.Fetch.ManifestURL,
			ResourcesURL: cfg.Fetch.ResourcesURL,
			Timeout:      cfg.Fetch.Timeout,
			MaxAttempts:  cfg.Fetch.MaxAttempts,
			RetryMin:     cfg.Fetch.RetryMin,
			RetryMax:     cfg.Fetch.RetryMax,
		}, m),
		Filter: filter.New(logger, classifier.New(rules), m, filter.Config{
			FullDir:  cfg.Paths.FullDir,
			ValidDir: cfg.Paths.ValidDir,
			Workers:  cfg.Filter.Workers,
			DryRun:   opts.DryRun,
		}),
		Metrics: m,
	}

	if slices.Contains(phases, updater.PhaseStore) && cfg.Database.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return false, err
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			return false, err
		}
		deps.Terms = term.New(pool)
		deps.Tx = postgres.NewTxManager(pool)
	}

	pipeline := updater.NewPipeline(logger, deps, updater.Config{
		Locales:      cfg.Filter.Locales,
		FullDir:      cfg.Paths.FullDir,
		ValidDir:     cfg.Paths.ValidDir,
		VersionFile:  cfg.Paths.VersionFile,
		TempDir:      cfg.Paths.TempDir,
		Channel:      cfg.Fetch.Channel,
		FetchWorkers: cfg.Fetch.Workers,
		BatchSize:    cfg.Database.BatchSize,
		DryRun:       opts.DryRun,
	})
	if err := pipeline.Run(ctx, phases); err != nil {
		return false, err
	}

	if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logger.Warn("write metrics textfile", slog.String("error", err.Error()))
	}

	return !pipeline.HasErrors(), nil
}

// applyOptions overrides config values with non-empty options and
// re-validates, so locale and rule set flags get the same checks as config.
func applyOptions(cfg *config.Config, opts Options) error {
	if strings.TrimSpace(opts.Locales) != "" {
		cfg.Filter.LocalesRaw = opts.Locales
	}
	if strings.TrimSpace(opts.RuleSet) != "" {
		cfg.Filter.RuleSet = opts.RuleSet
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
