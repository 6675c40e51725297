package relation

import (
	"fmt"
	"math"
	"time"

	"draft-assistant/internal/domain"
)

type ProficiencyConfig struct {
	WinRateWeight float64
	GamesWeight   float64
	WinsWeight    float64

	// Scores are untouched for Grace after the last game, then decay linearly
	// over DecaySpan down to DecayFloor of their value.
	Grace      time.Duration
	DecaySpan  time.Duration
	DecayFloor float64
}

func DefaultProficiencyConfig() ProficiencyConfig {
	return ProficiencyConfig{
		WinRateWeight: 0.5,
		GamesWeight:   0.3,
		WinsWeight:    0.2,
		Grace:         30 * 24 * time.Hour,
		DecaySpan:     180 * 24 * time.Hour,
		DecayFloor:    0.5,
	}
}

func (c ProficiencyConfig) Validate() error {
	if c.WinRateWeight < 0 || c.GamesWeight < 0 || c.WinsWeight < 0 {
		return fmt.Errorf("proficiency weights must not be negative")
	}
	if c.Grace < 0 || c.DecaySpan < 0 {
		return fmt.Errorf("proficiency grace and decay span must not be negative")
	}
	if c.DecayFloor < 0 || c.DecayFloor > 1 {
		return fmt.Errorf("proficiency decay floor must be in [0,1], got %f", c.DecayFloor)
	}
	return nil
}

// Proficiency is a player's history with scores already normalized to [0,100].
type Proficiency struct {
	heroes map[int]domain.PlayerHeroStat
	scores map[int]float64
}

// NewProficiency normalizes data at the given instant. It returns nil when
// there is no player data, which callers treat as "no active player".
func NewProficiency(data *domain.PlayerData, cfg ProficiencyConfig, now time.Time) *Proficiency {
	if data == nil || data.Proficiency == nil {
		return nil
	}
	heroes := make(map[int]domain.PlayerHeroStat, len(data.Proficiency))
	for id, s := range data.Proficiency {
		heroes[id] = s
	}
	return &Proficiency{
		heroes: heroes,
		scores: NormalizeProficiency(heroes, cfg, now),
	}
}

func (p *Proficiency) Score(id int) float64 {
	if p == nil {
		return 0
	}
	return p.scores[id]
}

func (p *Proficiency) Games(id int) int {
	if p == nil {
		return 0
	}
	return p.heroes[id].Games
}

func (p *Proficiency) Scores() map[int]float64 {
	out := make(map[int]float64, len(p.scores))
	for k, v := range p.scores {
		out[k] = v
	}
	return out
}

// RawProficiency combines results and experience. Games and wins enter through
// concave functions so each additional game or win adds less.
func RawProficiency(s domain.PlayerHeroStat, cfg ProficiencyConfig) float64 {
	games := math.Max(0, float64(s.Games))
	wins := math.Max(0, float64(s.Wins))

	winRate := s.WinRate
	if s.Games > 0 && (winRate <= 0 || winRate > 1) {
		winRate = wins / games
	}
	if s.Games <= 0 {
		winRate = 0
	}

	return cfg.WinRateWeight*winRate*100 +
		cfg.GamesWeight*math.Log1p(games)*10 +
		cfg.WinsWeight*math.Sqrt(wins)*5
}

// NormalizeProficiency rescales raw scores so the best hero maps to 100, then
// applies recency decay.
func NormalizeProficiency(heroes map[int]domain.PlayerHeroStat, cfg ProficiencyConfig, now time.Time) map[int]float64 {
	out := make(map[int]float64, len(heroes))
	if len(heroes) == 0 {
		return out
	}

	raw := make(map[int]float64, len(heroes))
	maxRaw := 0.0
	for id, s := range heroes {
		r := RawProficiency(s, cfg)
		raw[id] = r
		if r > maxRaw {
			maxRaw = r
		}
	}

	for id, r := range raw {
		if maxRaw <= 0 {
			out[id] = 0
			continue
		}
		score := Clamp(r/maxRaw*100, 0, 100)
		out[id] = score * RecencyFactor(heroes[id].LastPlayed, cfg, now)
	}
	return out
}

// RecencyFactor is 1 inside the grace window and never below DecayFloor.
func RecencyFactor(lastPlayed int64, cfg ProficiencyConfig, now time.Time) float64 {
	if lastPlayed <= 0 || cfg.DecaySpan <= 0 {
		return 1
	}
	idle := now.Sub(time.Unix(lastPlayed, 0))
	if idle <= cfg.Grace {
		return 1
	}
	progress := float64(idle-cfg.Grace) / float64(cfg.DecaySpan)
	return Clamp(1-(1-cfg.DecayFloor)*progress, cfg.DecayFloor, 1)
}
