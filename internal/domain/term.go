package domain

import (
	"time"

	"github.com/google/uuid"
)

// Term is one valid translation entry as stored in the flashcard catalog.
type Term struct {
	Locale      Locale
	Key         string
	Value       string
	Category    string
	Position    int
	GameVersion string
	RunID       uuid.UUID
	UpdatedAt   time.Time
}

// TermCount is the number of stored terms for a locale.
type TermCount struct {
	Locale Locale
	Count  int
}
