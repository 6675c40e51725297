package domain

import (
	"time"
)

type Archetype string

const (
	ArchetypeStrength     Archetype = "strength"
	ArchetypeAgility      Archetype = "agility"
	ArchetypeIntelligence Archetype = "intelligence"
	ArchetypeUniversal    Archetype = "universal"
)

// Hero is an immutable roster entry. ID matches the stats source's hero id.
type Hero struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"` // canonical (english) name
	LocalizedName string    `json:"localized_name"`
	Archetype     Archetype `json:"archetype"`
}

// HeroAggregate is one hero's population totals as reported by the stats source.
type HeroAggregate struct {
	HeroID     int    `json:"hero_id"`
	SourceName string `json:"source_name"`
	TotalPicks int    `json:"total_picks"`
	TotalWins  int    `json:"total_wins"`
}

// Matchup is the raw record of HeroID playing against an opponent.
type Matchup struct {
	Wins        int `json:"wins"`
	GamesPlayed int `json:"games_played"`
}

// MatchupMatrix is keyed by hero id, then opponent hero id.
type MatchupMatrix map[int]map[int]Matchup

// FilledRows counts heroes with at least one recorded matchup. A failed row
// fetch leaves an empty row behind, which does not count.
func (m MatchupMatrix) FilledRows() int {
	n := 0
	for _, row := range m {
		if len(row) > 0 {
			n++
		}
	}
	return n
}

type PlayerProfile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PlayerHeroStat struct {
	HeroID     int     `json:"hero_id"`
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Score      float64 `json:"score"`
	LastPlayed int64   `json:"last_played"` // unix seconds
}

// PlayerData is the per-player history used for proficiency scoring.
type PlayerData struct {
	PlayerID    string                 `json:"player_id"`
	AccountID   string                 `json:"account_id"`
	PersonaName string                 `json:"persona_name,omitempty"`
	Avatar      string                 `json:"avatar,omitempty"`
	Proficiency map[int]PlayerHeroStat `json:"proficiency"`
	FetchedAt   time.Time              `json:"fetched_at"`
}
