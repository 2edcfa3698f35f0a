package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	locale := UniqueLocale()
	term := SeedTerm(t, pool, locale, "block.minecraft.stone", "Stone", uuid.New())

	var value string
	err := pool.QueryRow(
		context.Background(),
		`SELECT value FROM game_terms WHERE locale = $1 AND term_key = $2`,
		string(locale), term.Key,
	).Scan(&value)
	if err != nil {
		t.Fatalf("expected term in DB, got error: %v", err)
	}

	if value != term.Value {
		t.Fatalf("expected value %q, got %q", term.Value, value)
	}
}
