package domain

// Entry is one key/value pair of a language file.
type Entry struct {
	Key   string
	Value string
}

// Mapping is an insertion-ordered key→string mapping. Setting an existing key
// replaces its value but keeps its original position.
// The zero value is not usable; create with NewMapping.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping creates an empty mapping with room for n entries.
func NewMapping(n int) *Mapping {
	return &Mapping{
		entries: make([]Entry, 0, n),
		index:   make(map[string]int, n),
	}
}

// MappingOf builds a mapping from entries in order.
func MappingOf(entries ...Entry) *Mapping {
	m := NewMapping(len(entries))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set inserts or replaces key.
func (m *Mapping) Set(key, value string) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value for key.
func (m *Mapping) Get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order. The slice must not be modified.
func (m *Mapping) Entries() []Entry { return m.entries }

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}
