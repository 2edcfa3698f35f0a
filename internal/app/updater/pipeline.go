// Package updater runs an update: fetch the latest language files, filter
// them down to valid keys, and optionally store the result in the catalog
// database. Phases run in a fixed order; a failing locale never stops the
// others.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mclang/internal/adapter/provider/mojang"
	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/filter"
	"github.com/heartmarshall/mclang/internal/metrics"
	"github.com/heartmarshall/mclang/pkg/ctxutil"
)

// Phase names.
const (
	PhaseFetch  = "fetch"
	PhaseFilter = "filter"
	PhaseStore  = "store"
)

// allPhases defines the canonical execution order.
var allPhases = []string{PhaseFetch, PhaseFilter, PhaseStore}

// DefaultPhases run when none are requested.
var DefaultPhases = []string{PhaseFetch, PhaseFilter}

// Locale outcome statuses besides error kinds.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

// ParsePhases parses a comma-separated phase list and returns it in
// execution order. An empty list yields DefaultPhases.
func ParsePhases(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return slices.Clone(DefaultPhases), nil
	}
	want := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !slices.Contains(allPhases, p) {
			return nil, fmt.Errorf("unknown phase %q (want %s): %w", p, strings.Join(allPhases, ", "), domain.ErrValidation)
		}
		want[p] = true
	}
	var out []string
	for _, p := range allPhases {
		if want[p] {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultPhases), nil
	}
	return out, nil
}

// Config holds pipeline settings.
type Config struct {
	Locales      []domain.Locale
	FullDir      string
	ValidDir     string
	VersionFile  string
	TempDir      string
	Channel      string
	FetchWorkers int
	BatchSize    int
	DryRun       bool
}

// LocaleOutcome is what happened to one locale in one phase.
type LocaleOutcome struct {
	Locale domain.Locale
	Status string
	Err    error
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	OK       int
	Skipped  int
	Failed   int
	Rows     int
	Duration time.Duration
	Locales  []LocaleOutcome
	// Err is set when the phase could not run at all.
	Err error
}

func (r *PhaseResult) add(o LocaleOutcome) {
	switch {
	case o.Err != nil:
		r.Failed++
	case o.Status == StatusSkipped:
		r.Skipped++
	default:
		r.OK++
	}
	r.Locales = append(r.Locales, o)
}

// Fetcher is the distribution service client.
type Fetcher interface {
	Manifest(ctx context.Context) (*mojang.Manifest, error)
	VersionDetails(ctx context.Context, url string) (*mojang.VersionDetails, error)
	AssetIndex(ctx context.Context, url string) (*mojang.AssetIndex, error)
	Download(ctx context.Context, url, sha1, dest string) (int64, error)
	ResourceURL(hash string) (string, error)
}

// LocaleFilter filters locale files on disk.
type LocaleFilter interface {
	Batch(ctx context.Context, locales []domain.Locale) filter.BatchResult
}

// Deps are the collaborators of a Pipeline. Terms and Tx may be nil when no
// database is configured; the store phase then fails.
type Deps struct {
	Fetcher Fetcher
	Filter  LocaleFilter
	Terms   TermRepo
	Tx      TxRunner
	Metrics *metrics.Metrics
}

// Pipeline orchestrates the update phases.
type Pipeline struct {
	log     *slog.Logger
	deps    Deps
	cfg     Config
	runID   uuid.UUID
	version string
	results map[string]PhaseResult
	// fetchFailed and filterFailed hold locales whose fetch or filter step
	// failed in this run. Later phases skip them instead of working on
	// stale files.
	fetchFailed  map[domain.Locale]bool
	filterFailed map[domain.Locale]bool
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, deps Deps, cfg Config) *Pipeline {
	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = 4
	}
	return &Pipeline{
		log:          log.With(slog.String("component", "updater")),
		deps:         deps,
		cfg:          cfg,
		runID:        uuid.New(),
		results:      make(map[string]PhaseResult),
		fetchFailed:  make(map[domain.Locale]bool),
		filterFailed: make(map[domain.Locale]bool),
	}
}

// RunID identifies this run in logs and stored rows.
func (p *Pipeline) RunID() uuid.UUID { return p.runID }

// GameVersion returns the game version this run worked on, if known.
func (p *Pipeline) GameVersion() string { return p.version }

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any phase or locale failed.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Failed > 0 {
			return true
		}
	}
	return false
}

// Run executes the listed phases in canonical order. An empty list runs
// DefaultPhases. Phase and locale failures are recorded in Results, not
// returned; Run only errors when the request itself is invalid.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	toRun, err := ParsePhases(strings.Join(phases, ","))
	if err != nil {
		return err
	}
	if len(p.cfg.Locales) == 0 {
		return fmt.Errorf("no locales configured: %w", domain.ErrValidation)
	}

	ctx = ctxutil.WithRunID(ctx, p.runID)
	p.log.InfoContext(ctx, "update started",
		slog.String("phases", strings.Join(toRun, ",")),
		slog.Int("locales", len(p.cfg.Locales)),
		slog.Bool("dry_run", p.cfg.DryRun),
	)

	for _, phase := range toRun {
		start := time.Now()
		p.log.InfoContext(ctx, "starting phase", slog.String("phase", phase))

		var result PhaseResult
		switch phase {
		case PhaseFetch:
			result = p.runFetch(ctx)
		case PhaseFilter:
			result = p.runFilter(ctx)
		case PhaseStore:
			result = p.runStore(ctx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result
		p.deps.Metrics.ObservePhase(phase, result.Duration)

		if result.Err != nil {
			p.log.WarnContext(ctx, "phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			continue
		}
		p.log.InfoContext(ctx, "phase completed",
			slog.String("phase", phase),
			slog.Int("ok", result.OK),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed),
			slog.Int("rows", result.Rows),
			slog.Duration("duration", result.Duration),
		)
	}

	if !p.HasErrors() {
		p.deps.Metrics.MarkSuccess(time.Now())
	}
	p.log.InfoContext(ctx, "update completed",
		slog.Int("phases_run", len(toRun)),
		slog.Bool("errors", p.HasErrors()),
	)
	return nil
}

// runFilter filters every configured locale whose fetch did not fail in
// this run.
func (p *Pipeline) runFilter(ctx context.Context) PhaseResult {
	if p.deps.Filter == nil {
		return PhaseResult{Err: fmt.Errorf("filter not configured")}
	}

	todo := make([]domain.Locale, 0, len(p.cfg.Locales))
	for _, loc := range p.cfg.Locales {
		if !p.fetchFailed[loc] {
			todo = append(todo, loc)
		}
	}

	byLocale := make(map[domain.Locale]LocaleOutcome, len(todo))
	if len(todo) > 0 {
		batch := p.deps.Filter.Batch(ctx, todo)
		for _, r := range batch.Results {
			o := LocaleOutcome{Locale: r.Locale, Status: StatusOK, Err: r.Err}
			if r.Err != nil {
				o.Status = domain.ErrorKind(r.Err)
				p.filterFailed[r.Locale] = true
			}
			byLocale[r.Locale] = o
		}
	}

	var result PhaseResult
	for _, loc := range p.cfg.Locales {
		if p.fetchFailed[loc] {
			p.log.InfoContext(ctx, "skipping locale, fetch failed", slog.String("locale", loc.String()))
			p.deps.Metrics.ObserveLocale(PhaseFilter, StatusSkipped)
			result.add(LocaleOutcome{Locale: loc, Status: StatusSkipped})
			continue
		}
		if o, ok := byLocale[loc]; ok {
			result.add(o)
		}
	}
	return result
}

// readVersionFile returns the recorded game version, or "" when unknown.
func (p *Pipeline) readVersionFile() string {
	if p.cfg.VersionFile == "" {
		return ""
	}
	data, err := os.ReadFile(p.cfg.VersionFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
