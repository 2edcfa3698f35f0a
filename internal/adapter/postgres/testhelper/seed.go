package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mclang/internal/domain"
)

// UniqueLocale returns a locale name no other test uses, so tests sharing
// the container do not see each other's rows.
func UniqueLocale() domain.Locale {
	return domain.Locale("t_" + uuid.New().String()[:8])
}

// SeedTerm inserts one game_terms row directly. Returns the stored term.
func SeedTerm(t *testing.T, pool *pgxpool.Pool, locale domain.Locale, key, value string, runID uuid.UUID) domain.Term {
	t.Helper()

	term := domain.Term{
		Locale:      locale,
		Key:         key,
		Value:       value,
		Category:    "block",
		Position:    0,
		GameVersion: "test",
		RunID:       runID,
		UpdatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO game_terms (locale, term_key, value, category, position, game_version, run_id, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(term.Locale), term.Key, term.Value, term.Category, term.Position, term.GameVersion, term.RunID, term.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("SeedTerm: %v", err)
	}
	return term
}
