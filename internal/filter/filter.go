// Package filter reduces full language files to the keys a classifier
// accepts. Values and key order are carried over unchanged.
package filter

import (
	"github.com/heartmarshall/mclang/internal/classifier"
	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/langfile"
)

// Stats summarizes one filtering pass.
type Stats struct {
	Total   int
	Kept    int
	Dropped int
	// ByRule counts decisions per deciding rule name.
	ByRule map[string]int
}

// Apply returns the entries of full whose keys c accepts, in source order.
// full is not modified.
func Apply(c *classifier.Classifier, full *domain.Mapping) (*domain.Mapping, Stats) {
	stats := Stats{ByRule: make(map[string]int)}
	if full == nil {
		return domain.NewMapping(0), stats
	}

	valid := domain.NewMapping(full.Len())
	for _, e := range full.Entries() {
		d := c.Classify(e.Key)
		stats.Total++
		stats.ByRule[d.Rule]++
		if !d.Valid {
			stats.Dropped++
			continue
		}
		stats.Kept++
		valid.Set(e.Key, e.Value)
	}
	return valid, stats
}

// Bytes decodes src, filters it with c and encodes the result.
// Decoding errors wrap domain.ErrMalformedSource.
func Bytes(c *classifier.Classifier, src []byte) ([]byte, Stats, error) {
	full, err := langfile.Decode(src)
	if err != nil {
		return nil, Stats{}, err
	}
	valid, stats := Apply(c, full)
	return langfile.Encode(valid), stats, nil
}
