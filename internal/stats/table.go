package stats

import (
	"sort"

	"draft-assistant/internal/hero"
)

// HeroStats is the normalized record for one hero.
type HeroStats struct {
	ID      int
	WinRate float64
	Picks   int
	Wins    int
	// Counters holds the shrunk win rate against each opponent id. Matchups
	// below the sample threshold are absent, not zero.
	Counters map[int]float64
}

// Table is keyed by canonical hero id. Aliases resolve to an id first, so every
// name a hero is known under reads the same record.
type Table struct {
	heroes     map[int]HeroStats
	aliases    map[string]int
	generation uint64
	quality    Quality
}

func (t *Table) Lookup(id int) (HeroStats, bool) {
	if t == nil {
		return HeroStats{}, false
	}
	h, ok := t.heroes[id]
	return h, ok
}

// Resolve maps a name alias to the hero id it belongs to.
func (t *Table) Resolve(alias string) (int, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.aliases[hero.NormalizeAlias(alias)]
	return id, ok
}

func (t *Table) ByAlias(alias string) (HeroStats, bool) {
	id, ok := t.Resolve(alias)
	if !ok {
		return HeroStats{}, false
	}
	return t.Lookup(id)
}

// Counter returns the measured counter rate of a against b, if any.
func (t *Table) Counter(a, b int) (float64, bool) {
	h, ok := t.Lookup(a)
	if !ok {
		return 0, false
	}
	rate, ok := h.Counters[b]
	return rate, ok
}

// IDs returns the ids present in the table in ascending order.
func (t *Table) IDs() []int {
	if t == nil {
		return nil
	}
	ids := make([]int, 0, len(t.heroes))
	for id := range t.heroes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.heroes)
}

func (t *Table) Generation() uint64 {
	if t == nil {
		return 0
	}
	return t.generation
}

// WithGeneration returns a shallow copy stamped with gen. The hero records are
// shared, which is safe because a Table is never mutated after Normalize.
func (t *Table) WithGeneration(gen uint64) *Table {
	cp := *t
	cp.generation = gen
	return &cp
}

func (t *Table) Quality() Quality {
	if t == nil {
		return Quality{}
	}
	return t.quality
}
