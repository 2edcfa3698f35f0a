// Package term stores valid translation entries in the game_terms table,
// the catalog the flashcard builder reads from. Rows are keyed by
// (locale, term_key) and stamped with the run that last saw them.
package term

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mclang/internal/adapter/postgres"
	"github.com/heartmarshall/mclang/internal/domain"
)

const table = "game_terms"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides game term persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new game term repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// upsertSQL always refreshes run_id and game_version so DeleteStale can tell
// seen rows from stale ones; updated_at only moves when the content changed.
const upsertSQL = `INSERT INTO game_terms (locale, term_key, value, category, position, game_version, run_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (locale, term_key) DO UPDATE SET
	value        = EXCLUDED.value,
	category     = EXCLUDED.category,
	position     = EXCLUDED.position,
	game_version = EXCLUDED.game_version,
	run_id       = EXCLUDED.run_id,
	updated_at   = CASE
		WHEN (game_terms.value, game_terms.category, game_terms.position)
			IS DISTINCT FROM (EXCLUDED.value, EXCLUDED.category, EXCLUDED.position)
		THEN EXCLUDED.updated_at
		ELSE game_terms.updated_at
	END`

// BulkUpsert inserts or refreshes terms using pgx.Batch.
// Returns the number of rows written.
func (r *Repo) BulkUpsert(ctx context.Context, terms []domain.Term) (int, error) {
	if len(terms) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, t := range terms {
		batch.Queue(upsertSQL,
			string(t.Locale), t.Key, t.Value, t.Category, t.Position, t.GameVersion, t.RunID, t.UpdatedAt,
		)
	}

	n, err := r.sendBatchExec(ctx, batch)
	if err != nil {
		return n, postgres.MapError(err, "term batch", string(terms[0].Locale))
	}
	return n, nil
}

// DeleteStale removes the rows of locale that runID did not write.
func (r *Repo) DeleteStale(ctx context.Context, locale domain.Locale, runID uuid.UUID) (int, error) {
	query := psql.Delete(table).
		Where(squirrel.Eq{"locale": string(locale)}).
		Where(squirrel.NotEq{"run_id": runID.String()})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "stale terms", string(locale))
	}
	return int(tag.RowsAffected()), nil
}

// CountByLocale returns the number of stored terms per locale, ordered by
// locale. An empty filter counts every locale.
func (r *Repo) CountByLocale(ctx context.Context, locales ...domain.Locale) ([]domain.TermCount, error) {
	query := psql.Select("locale", "count(*)").
		From(table).
		GroupBy("locale").
		OrderBy("locale")
	if len(locales) > 0 {
		names := make([]string, len(locales))
		for i, l := range locales {
			names[i] = string(l)
		}
		query = query.Where(squirrel.Eq{"locale": names})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "term counts", "")
	}
	defer rows.Close()

	var out []domain.TermCount
	for rows.Next() {
		var (
			locale string
			count  int64
		)
		if err := rows.Scan(&locale, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out = append(out, domain.TermCount{Locale: domain.Locale(locale), Count: int(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "term counts", "")
	}
	return out, nil
}

// ListByLocale returns the stored terms of locale in file order.
func (r *Repo) ListByLocale(ctx context.Context, locale domain.Locale) ([]domain.Term, error) {
	query := psql.Select("locale", "term_key", "value", "category", "position", "game_version", "run_id", "updated_at").
		From(table).
		Where(squirrel.Eq{"locale": string(locale)}).
		OrderBy("position")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "terms", string(locale))
	}

	terms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Term, error) {
		var (
			t   domain.Term
			loc string
		)
		err := row.Scan(&loc, &t.Key, &t.Value, &t.Category, &t.Position, &t.GameVersion, &t.RunID, &t.UpdatedAt)
		t.Locale = domain.Locale(loc)
		return t, err
	})
	if err != nil {
		return nil, postgres.MapError(err, "terms", string(locale))
	}
	return terms, nil
}

func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var written int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("batch exec: %w", err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}
