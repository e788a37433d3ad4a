package service

import (
	"math/rand"

	"yurcoinbot/internal/catalog"
)

// Rand is the source of randomness used by the selector.
type Rand interface {
	IntN(n int) int
}

// CatalogSource yields the current prize entries.
type CatalogSource interface {
	Load() []catalog.Entry
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.Intn(n) }

// Selector picks a prize uniformly from the catalog.
type Selector struct {
	source CatalogSource
	rng    Rand
}

// NewSelector creates a selector; a nil rng uses the shared math/rand source.
func NewSelector(source CatalogSource, rng Rand) *Selector {
	if rng == nil {
		rng = globalRand{}
	}
	return &Selector{source: source, rng: rng}
}

// Pick re-reads the catalog and returns one entry, or false when it is empty.
func (s *Selector) Pick() (catalog.Entry, bool) {
	entries := s.source.Load()
	if len(entries) == 0 {
		return catalog.Entry{}, false
	}
	return entries[s.rng.IntN(len(entries))], true
}
