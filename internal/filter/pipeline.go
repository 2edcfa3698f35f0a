package filter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/mclang/internal/classifier"
	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/langfile"
	"github.com/heartmarshall/mclang/internal/metrics"
)

const (
	phaseName      = "filter"
	defaultWorkers = 4
)

// Config holds filter pipeline settings.
type Config struct {
	FullDir  string
	ValidDir string
	Workers  int
	DryRun   bool
}

// LocaleResult is the outcome of filtering one locale.
type LocaleResult struct {
	Locale   domain.Locale
	Stats    Stats
	Output   string // empty on failure and in dry-run mode
	Duration time.Duration
	Err      error
}

// BatchResult holds one LocaleResult per requested locale, in request order.
type BatchResult struct {
	Results []LocaleResult
}

// Failed returns the results that carry an error.
func (b BatchResult) Failed() []LocaleResult {
	var failed []LocaleResult
	for _, r := range b.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// HasErrors reports whether any locale failed.
func (b BatchResult) HasErrors() bool {
	return len(b.Failed()) > 0
}

// Filter runs the filtering step over locale files on disk.
type Filter struct {
	log     *slog.Logger
	cls     *classifier.Classifier
	metrics *metrics.Metrics
	cfg     Config
}

// New creates a Filter. m may be nil.
func New(log *slog.Logger, cls *classifier.Classifier, m *metrics.Metrics, cfg Config) *Filter {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Filter{
		log:     log.With(slog.String("component", "filter"), slog.String("ruleset", cls.RuleSetName())),
		cls:     cls,
		metrics: m,
		cfg:     cfg,
	}
}

// SourcePath returns where the full file for locale is read from.
func (f *Filter) SourcePath(locale domain.Locale) string {
	return filepath.Join(f.cfg.FullDir, locale.FileName())
}

// OutputPath returns where the valid file for locale is written.
func (f *Filter) OutputPath(locale domain.Locale) string {
	return filepath.Join(f.cfg.ValidDir, locale.FileName())
}

// Locale filters a single locale. On failure no output is written and the
// error is a *domain.LocaleError.
func (f *Filter) Locale(ctx context.Context, locale domain.Locale) LocaleResult {
	start := time.Now()
	res := LocaleResult{Locale: locale}

	if err := ctx.Err(); err != nil {
		res.Err = domain.NewLocaleError(locale, phaseName, err)
		res.Duration = time.Since(start)
		f.record(res)
		return res
	}

	full, err := langfile.ReadFile(f.SourcePath(locale))
	if err != nil {
		res.Err = domain.NewLocaleError(locale, phaseName, err)
		res.Duration = time.Since(start)
		f.record(res)
		return res
	}

	valid, stats := Apply(f.cls, full)
	res.Stats = stats

	if !f.cfg.DryRun {
		out := f.OutputPath(locale)
		if err := langfile.WriteFile(out, valid); err != nil {
			res.Err = domain.NewLocaleError(locale, phaseName, fmt.Errorf("write output: %w", err))
			res.Duration = time.Since(start)
			f.record(res)
			return res
		}
		res.Output = out
	}

	res.Duration = time.Since(start)
	f.record(res)
	return res
}

// Batch filters every locale on a bounded worker pool. A failing locale
// never stops the others; each outcome is reported in the result.
func (f *Filter) Batch(ctx context.Context, locales []domain.Locale) BatchResult {
	results := make([]LocaleResult, len(locales))

	var g errgroup.Group
	g.SetLimit(f.cfg.Workers)

	for i, loc := range locales {
		g.Go(func() error {
			results[i] = f.Locale(ctx, loc)
			return nil
		})
	}
	_ = g.Wait()

	return BatchResult{Results: results}
}

func (f *Filter) record(res LocaleResult) {
	status := "ok"
	if res.Err != nil {
		status = domain.ErrorKind(res.Err)
		f.log.Warn("locale failed",
			slog.String("locale", res.Locale.String()),
			slog.String("kind", status),
			slog.String("error", res.Err.Error()),
		)
	} else {
		f.metrics.ObserveFilter(res.Locale.String(), res.Stats.Kept, res.Stats.Dropped, res.Stats.ByRule, res.Duration)
		f.log.Info("locale filtered",
			slog.String("locale", res.Locale.String()),
			slog.Int("total", res.Stats.Total),
			slog.Int("kept", res.Stats.Kept),
			slog.Int("dropped", res.Stats.Dropped),
			slog.Bool("dry_run", f.cfg.DryRun),
			slog.Duration("duration", res.Duration),
		)
	}
	f.metrics.ObserveLocale(phaseName, status)
}
