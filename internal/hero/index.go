package hero

import (
	_ "embed"
	"fmt"
	"strings"

	"draft-assistant/internal/domain"

	"github.com/pelletier/go-toml/v2"
)

//go:embed roster.toml
var defaultRoster []byte

type rosterFile struct {
	Heroes []rosterEntry `toml:"heroes"`
}

type rosterEntry struct {
	ID        int      `toml:"id"`
	Name      string   `toml:"name"`
	Localized string   `toml:"localized"`
	Archetype string   `toml:"archetype"`
	Aliases   []string `toml:"aliases"`
}

// Index is the fixed roster plus a bidirectional name/id mapping.
// It is built once and never mutated.
type Index struct {
	heroes  []domain.Hero
	byID    map[int]int // hero id -> position in heroes
	aliases map[string]int
}

func NewDefault() (*Index, error) {
	return Parse(defaultRoster)
}

// Parse builds an Index from a TOML roster document.
func Parse(data []byte) (*Index, error) {
	var file rosterFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	idx := &Index{
		byID:    make(map[int]int, len(file.Heroes)),
		aliases: make(map[string]int, len(file.Heroes)*3),
	}

	for _, e := range file.Heroes {
		if e.ID <= 0 || e.Name == "" {
			return nil, fmt.Errorf("invalid roster entry %q (id %d)", e.Name, e.ID)
		}
		if _, dup := idx.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate hero id %d in roster", e.ID)
		}

		archetype, err := parseArchetype(e.Archetype)
		if err != nil {
			return nil, fmt.Errorf("hero %q: %w", e.Name, err)
		}

		idx.byID[e.ID] = len(idx.heroes)
		idx.heroes = append(idx.heroes, domain.Hero{
			ID:            e.ID,
			Name:          e.Name,
			LocalizedName: e.Localized,
			Archetype:     archetype,
		})

		names := append([]string{e.Name, e.Localized}, e.Aliases...)
		for _, name := range names {
			if err := idx.addAlias(name, e.ID); err != nil {
				return nil, err
			}
		}
	}

	return idx, nil
}

func parseArchetype(s string) (domain.Archetype, error) {
	switch a := domain.Archetype(strings.ToLower(s)); a {
	case domain.ArchetypeStrength, domain.ArchetypeAgility, domain.ArchetypeIntelligence, domain.ArchetypeUniversal:
		return a, nil
	}
	return "", fmt.Errorf("unknown archetype %q", s)
}

func (i *Index) addAlias(name string, id int) error {
	key := NormalizeAlias(name)
	if key == "" {
		return nil
	}
	if existing, ok := i.aliases[key]; ok && existing != id {
		return fmt.Errorf("alias %q maps to both %d and %d", name, existing, id)
	}
	i.aliases[key] = id
	return nil
}

// NormalizeAlias folds case and surrounding whitespace so lookups accept either
// the roster's display name or the stats source's own naming.
func NormalizeAlias(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// All returns the roster in its configured order.
func (i *Index) All() []domain.Hero {
	out := make([]domain.Hero, len(i.heroes))
	copy(out, i.heroes)
	return out
}

func (i *Index) Len() int {
	return len(i.heroes)
}

func (i *Index) IDs() []int {
	ids := make([]int, len(i.heroes))
	for n, h := range i.heroes {
		ids[n] = h.ID
	}
	return ids
}

func (i *Index) Contains(id int) bool {
	_, ok := i.byID[id]
	return ok
}

func (i *Index) ByID(id int) (domain.Hero, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return domain.Hero{}, false
	}
	return i.heroes[pos], true
}

// Resolve maps any known alias to its hero.
func (i *Index) Resolve(alias string) (domain.Hero, bool) {
	id, ok := i.aliases[NormalizeAlias(alias)]
	if !ok {
		return domain.Hero{}, false
	}
	return i.ByID(id)
}

// Aliases returns a copy of the normalized alias -> id mapping.
func (i *Index) Aliases() map[string]int {
	out := make(map[string]int, len(i.aliases))
	for k, v := range i.aliases {
		out[k] = v
	}
	return out
}

func (i *Index) ByArchetype(a domain.Archetype) []domain.Hero {
	var out []domain.Hero
	for _, h := range i.heroes {
		if h.Archetype == a {
			out = append(out, h)
		}
	}
	return out
}
