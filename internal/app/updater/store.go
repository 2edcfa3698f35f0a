package updater

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mclang/internal/classifier"
	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/langfile"
	"github.com/heartmarshall/mclang/pkg/ctxutil"
)

// TermRepo persists valid terms.
type TermRepo interface {
	BulkUpsert(ctx context.Context, terms []domain.Term) (int, error)
	DeleteStale(ctx context.Context, locale domain.Locale, runID uuid.UUID) (int, error)
	CountByLocale(ctx context.Context, locales ...domain.Locale) ([]domain.TermCount, error)
}

// TxRunner runs fn in a single database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const unknownVersion = "unknown"

// runStore loads every valid file into the catalog, one transaction per
// locale. Locales whose filter step failed in this run are skipped so the
// catalog keeps their previous content.
func (p *Pipeline) runStore(ctx context.Context) PhaseResult {
	if p.deps.Terms == nil || p.deps.Tx == nil {
		return PhaseResult{Err: fmt.Errorf("store phase needs database.dsn: %w", domain.ErrValidation)}
	}

	version := p.version
	if version == "" {
		version = p.readVersionFile()
	}
	if version == "" {
		version = unknownVersion
	}

	var result PhaseResult
	for _, loc := range p.cfg.Locales {
		lctx := ctxutil.WithLocale(ctx, loc.String())

		if p.fetchFailed[loc] || p.filterFailed[loc] {
			result.add(LocaleOutcome{Locale: loc, Status: StatusSkipped})
			p.deps.Metrics.ObserveLocale(PhaseStore, StatusSkipped)
			continue
		}

		rows, err := p.storeLocale(lctx, loc, version)
		o := LocaleOutcome{Locale: loc, Status: StatusOK, Err: err}
		if err != nil {
			o.Status = domain.ErrorKind(err)
			p.log.WarnContext(lctx, "locale store failed",
				slog.String("kind", o.Status),
				slog.String("error", err.Error()),
			)
		}
		result.Rows += rows
		result.add(o)
		p.deps.Metrics.ObserveLocale(PhaseStore, o.Status)
	}

	counts, err := p.deps.Terms.CountByLocale(ctx, p.cfg.Locales...)
	if err != nil {
		p.log.WarnContext(ctx, "count stored terms", slog.String("error", err.Error()))
		return result
	}
	for _, c := range counts {
		p.log.InfoContext(ctx, "catalog size", slog.String("locale", c.Locale.String()), slog.Int("terms", c.Count))
	}
	return result
}

func (p *Pipeline) storeLocale(ctx context.Context, loc domain.Locale, version string) (int, error) {
	valid, err := langfile.ReadFile(filepath.Join(p.cfg.ValidDir, loc.FileName()))
	if err != nil {
		return 0, domain.NewLocaleError(loc, PhaseStore, err)
	}

	terms := toTerms(loc, valid, version, p.runID, time.Now().UTC())
	if p.cfg.DryRun {
		p.log.InfoContext(ctx, "dry run: would store terms", slog.Int("terms", len(terms)))
		return 0, nil
	}

	var written, deleted int
	err = p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := batchProcess(terms, p.cfg.BatchSize, func(batch []domain.Term) (int, error) {
			return p.deps.Terms.BulkUpsert(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("upsert terms: %w", err)
		}
		written = n

		deleted, err = p.deps.Terms.DeleteStale(ctx, loc, p.runID)
		if err != nil {
			return fmt.Errorf("delete stale terms: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, domain.NewLocaleError(loc, PhaseStore, err)
	}

	p.log.InfoContext(ctx, "locale stored",
		slog.Int("written", written),
		slog.Int("deleted", deleted),
	)
	return written, nil
}

func toTerms(loc domain.Locale, m *domain.Mapping, version string, runID uuid.UUID, now time.Time) []domain.Term {
	terms := make([]domain.Term, 0, m.Len())
	for i, e := range m.Entries() {
		terms = append(terms, domain.Term{
			Locale:      loc,
			Key:         e.Key,
			Value:       e.Value,
			Category:    classifier.CategoryOf(e.Key).String(),
			Position:    i,
			GameVersion: version,
			RunID:       runID,
			UpdatedAt:   now,
		})
	}
	return terms
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
