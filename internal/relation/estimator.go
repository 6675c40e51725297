// Package relation answers the pairwise questions the scoring engine asks:
// how strong a hero is, how it fares against another hero, how well two heroes
// play together and how proficient a player is with a hero. Every answer has a
// neutral fallback so missing data never stops scoring.
package relation

import (
	"fmt"

	"draft-assistant/internal/stats"
)

const Neutral = 0.5

type Config struct {
	// Counter fallback: 0.5 + CounterDamping*(wrA-wrB), clamped to the band.
	CounterDamping float64
	CounterFloor   float64
	CounterCeil    float64

	// Synergy without player data: mean win rate plus a stable id-derived offset.
	SynergyStep  float64
	SynergyFloor float64
	SynergyCeil  float64

	// Synergy with player data.
	PlayerSynergyBase       float64
	PlayerSynergySpan       float64
	PlayerSynergyBonus      float64
	PlayerSynergyBonusGames int
	PlayerSynergyFloor      float64
	PlayerSynergyCeil       float64
}

func DefaultConfig() Config {
	return Config{
		CounterDamping: 0.3,
		CounterFloor:   0.3,
		CounterCeil:    0.7,

		SynergyStep:  0.002,
		SynergyFloor: 0.46,
		SynergyCeil:  0.54,

		PlayerSynergyBase:       0.47,
		PlayerSynergySpan:       0.06,
		PlayerSynergyBonus:      0.02,
		PlayerSynergyBonusGames: 10,
		PlayerSynergyFloor:      0.40,
		PlayerSynergyCeil:       0.60,
	}
}

func (c Config) Validate() error {
	bands := []struct {
		name      string
		floor, ceil float64
	}{
		{"counter", c.CounterFloor, c.CounterCeil},
		{"synergy", c.SynergyFloor, c.SynergyCeil},
		{"player synergy", c.PlayerSynergyFloor, c.PlayerSynergyCeil},
	}
	for _, b := range bands {
		if b.floor < 0 || b.ceil > 1 || b.floor > b.ceil {
			return fmt.Errorf("%s band [%f,%f] must be ordered and within [0,1]", b.name, b.floor, b.ceil)
		}
	}
	if c.CounterDamping < 0 {
		return fmt.Errorf("counter damping must not be negative")
	}
	if c.PlayerSynergyBonusGames < 0 {
		return fmt.Errorf("player synergy bonus games must not be negative")
	}
	return nil
}

type Option func(*Estimator)

// WithMissingHero registers a callback for lookups of heroes the stats table
// does not know. It is the only data-quality signal the estimator emits.
func WithMissingHero(fn func(heroID int)) Option {
	return func(e *Estimator) {
		e.onMissing = fn
	}
}

func WithConfig(cfg Config) Option {
	return func(e *Estimator) {
		e.cfg = cfg
	}
}

// Estimator is stateless apart from the read-only table it wraps.
type Estimator struct {
	table     *stats.Table
	cfg       Config
	onMissing func(heroID int)
}

func NewEstimator(table *stats.Table, opts ...Option) *Estimator {
	e := &Estimator{table: table, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Estimator) Table() *stats.Table {
	return e.table
}

func (e *Estimator) Config() Config {
	return e.cfg
}

func (e *Estimator) missing(id int) {
	if e.onMissing != nil {
		e.onMissing(id)
	}
}

// HeroWinRate returns the version win rate, or 0.5 for an unknown hero.
func (e *Estimator) HeroWinRate(id int) float64 {
	h, ok := e.table.Lookup(id)
	if !ok {
		e.missing(id)
		return Neutral
	}
	return h.WinRate
}

// CounterRate is a's win rate against b. Without a measured matchup it falls
// back to a damped estimate from the win-rate difference.
func (e *Estimator) CounterRate(a, b int) float64 {
	if rate, ok := e.table.Counter(a, b); ok {
		return rate
	}
	return e.CounterFallback(e.HeroWinRate(a), e.HeroWinRate(b))
}

// CounterFallback is continuous and non-decreasing in wrA-wrB.
func (e *Estimator) CounterFallback(wrA, wrB float64) float64 {
	return Clamp(Neutral+(wrA-wrB)*e.cfg.CounterDamping, e.cfg.CounterFloor, e.cfg.CounterCeil)
}

// SynergyRate estimates how well a and b play together. A nil proficiency
// selects the team-balance mode.
func (e *Estimator) SynergyRate(a, b int, p *Proficiency) float64 {
	if p == nil {
		avg := (e.HeroWinRate(a) + e.HeroWinRate(b)) / 2
		return Clamp(avg+e.pairVariation(a, b), e.cfg.SynergyFloor, e.cfg.SynergyCeil)
	}

	avg := (p.Score(a) + p.Score(b)) / 200
	rate := e.cfg.PlayerSynergyBase + avg*e.cfg.PlayerSynergySpan
	if p.Games(a) >= e.cfg.PlayerSynergyBonusGames && p.Games(b) >= e.cfg.PlayerSynergyBonusGames {
		rate += e.cfg.PlayerSynergyBonus
	}
	return Clamp(rate, e.cfg.PlayerSynergyFloor, e.cfg.PlayerSynergyCeil)
}

// pairVariation is symmetric in (a, b) and a pure function of the ids, so a
// pair always yields the same synergy.
func (e *Estimator) pairVariation(a, b int) float64 {
	bucket := (a + b) % 20
	if bucket < 0 {
		bucket += 20
	}
	return float64(bucket-10) * e.cfg.SynergyStep
}

// ProficiencyScore is the player's normalized [0,100] score for a hero, or 0
// without player data.
func (e *Estimator) ProficiencyScore(id int, p *Proficiency) float64 {
	if p == nil {
		return 0
	}
	return p.Score(id)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
