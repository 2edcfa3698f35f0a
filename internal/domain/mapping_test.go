package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapping_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	m := NewMapping(0)
	m.Set("c", "3")
	m.Set("a", "1")
	m.Set("b", "2")

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
	assert.Equal(t, 3, m.Len())
}

func TestMapping_SetExistingKeepsPosition(t *testing.T) {
	t.Parallel()

	m := MappingOf(Entry{"a", "1"}, Entry{"b", "2"})
	m.Set("a", "updated")

	assert.Equal(t, []Entry{{"a", "updated"}, {"b", "2"}}, m.Entries())

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "updated", v)
}

func TestMapping_GetMissing(t *testing.T) {
	t.Parallel()

	m := NewMapping(0)
	_, ok := m.Get("missing")
	assert.False(t, ok)
	assert.False(t, m.Has("missing"))
	assert.Empty(t, m.Keys())
}
