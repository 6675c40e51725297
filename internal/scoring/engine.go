package scoring

import (
	"fmt"
	"math"
	"sort"

	"draft-assistant/internal/domain"
	"draft-assistant/internal/relation"

	"github.com/samber/lo"
)

const (
	TeamSize     = 5
	NeutralScore = 50.0
)

type Config struct {
	WithPlayer    WeightProfile
	WithoutPlayer WeightProfile

	VersionFloor float64
	VersionCeil  float64

	// CounterExtremity weights each enemy by 1 + CounterExtremity*|rate-0.5|.
	// Values above 2 can make the weighted mean non-monotonic in a single rate.
	CounterExtremity float64

	RecommendationLimit int

	TeamVersionWeight     float64
	TeamCounterWeight     float64
	TeamProficiencyWeight float64
	TeamFloor             float64
	TeamCeil              float64
}

func DefaultConfig() Config {
	return Config{
		WithPlayer:    WithPlayerWeights,
		WithoutPlayer: WithoutPlayerWeights,

		VersionFloor: 30,
		VersionCeil:  70,

		CounterExtremity: 2,

		RecommendationLimit: 3,

		TeamVersionWeight:     50,
		TeamCounterWeight:     4,
		TeamProficiencyWeight: 3,
		TeamFloor:             20,
		TeamCeil:              80,
	}
}

func (c Config) Validate() error {
	if err := c.WithPlayer.Validate(); err != nil {
		return err
	}
	if err := c.WithoutPlayer.Validate(); err != nil {
		return err
	}
	if c.WithoutPlayer.SynergyRelation != 0 || c.WithoutPlayer.PlayerProficiency != 0 {
		return fmt.Errorf("profile %s must not weight player terms", c.WithoutPlayer.Name)
	}
	if c.VersionFloor > c.VersionCeil || c.TeamFloor > c.TeamCeil {
		return fmt.Errorf("clamp band floor above ceiling")
	}
	if c.TeamFloor <= 0 || c.TeamCeil >= 100 {
		return fmt.Errorf("team win rate band must exclude 0 and 100")
	}
	if c.CounterExtremity < 0 || c.CounterExtremity > 2 {
		return fmt.Errorf("counter extremity must be in [0,2], got %f", c.CounterExtremity)
	}
	if c.RecommendationLimit <= 0 {
		return fmt.Errorf("recommendation limit must be positive")
	}
	return nil
}

// ScoreBreakdown is recomputed on every draft change and never stored.
type ScoreBreakdown struct {
	VersionScore     float64  `json:"version_score"`
	CounterScore     float64  `json:"counter_score"`
	SynergyScore     *float64 `json:"synergy_score,omitempty"`
	ProficiencyScore *float64 `json:"proficiency_score,omitempty"`
	TotalScore       float64  `json:"total_score"`
	Profile          string   `json:"profile"`
}

type Recommendation struct {
	Hero       domain.Hero    `json:"hero"`
	TotalScore int            `json:"total_score"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

type TeamWinRate struct {
	Ally  float64 `json:"ally"`
	Enemy float64 `json:"enemy"`
}

// Event is emitted to the observer for every scored hero.
type Event struct {
	HeroID    int
	Allies    []int
	Enemies   []int
	Breakdown ScoreBreakdown
}

type Option func(*Engine)

func WithObserver(fn func(Event)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// Engine combines estimator answers into recommendation scores and team win
// probabilities. It is silent unless an observer is attached.
type Engine struct {
	est      *relation.Estimator
	cfg      Config
	observer func(Event)
}

func NewEngine(est *relation.Estimator, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{est: est, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// VersionScore maps a win rate to [0,100] and clamps it to the version band.
func (e *Engine) VersionScore(winRate float64) float64 {
	return relation.Clamp(winRate*100, e.cfg.VersionFloor, e.cfg.VersionCeil)
}

// CounterScore is the extremity-weighted mean counter rate against enemies,
// on a [0,100] scale with 0.5 -> 50. No enemies is neutral.
func (e *Engine) CounterScore(id int, enemies []int) float64 {
	if len(enemies) == 0 {
		return NeutralScore
	}
	var sum, weights float64
	for _, enemy := range enemies {
		rate := e.est.CounterRate(id, enemy)
		w := 1 + e.cfg.CounterExtremity*math.Abs(rate-relation.Neutral)
		sum += w * rate
		weights += w
	}
	return relation.Clamp(sum/weights*100, 0, 100)
}

func (e *Engine) SynergyScore(id int, allies []int, p *relation.Proficiency) float64 {
	if len(allies) == 0 {
		return NeutralScore
	}
	var sum float64
	for _, ally := range allies {
		sum += e.est.SynergyRate(id, ally, p)
	}
	return relation.Clamp(sum/float64(len(allies))*100, 0, 100)
}

// ScoreHero scores one candidate. A nil proficiency selects the
// without-player profile and omits the player terms.
func (e *Engine) ScoreHero(id int, allies, enemies []int, p *relation.Proficiency) ScoreBreakdown {
	profile := e.cfg.SelectProfile(p != nil)

	b := ScoreBreakdown{
		VersionScore: e.VersionScore(e.est.HeroWinRate(id)),
		CounterScore: e.CounterScore(id, enemies),
		Profile:      profile.Name,
	}
	b.TotalScore = profile.VersionWinRate*b.VersionScore + profile.CounterRelation*b.CounterScore

	if p != nil {
		synergy := e.SynergyScore(id, allies, p)
		proficiency := e.est.ProficiencyScore(id, p)
		b.SynergyScore = &synergy
		b.ProficiencyScore = &proficiency
		b.TotalScore += profile.SynergyRelation*synergy + profile.PlayerProficiency*proficiency
	}

	if e.observer != nil {
		e.observer(Event{HeroID: id, Allies: allies, Enemies: enemies, Breakdown: b})
	}
	return b
}

// Recommend ranks every roster hero not already drafted and returns the top
// entries. Ties keep roster order. A full ally side needs no recommendation.
func (e *Engine) Recommend(roster []domain.Hero, allies, enemies []int, p *relation.Proficiency) []Recommendation {
	if len(allies) >= TeamSize {
		return []Recommendation{}
	}

	drafted := make(map[int]struct{}, len(allies)+len(enemies))
	for _, id := range append(append([]int{}, allies...), enemies...) {
		drafted[id] = struct{}{}
	}
	candidates := lo.Filter(roster, func(h domain.Hero, _ int) bool {
		_, taken := drafted[h.ID]
		return !taken
	})

	recs := make([]Recommendation, 0, len(candidates))
	for _, h := range candidates {
		b := e.ScoreHero(h.ID, allies, enemies, p)
		recs = append(recs, Recommendation{
			Hero:       h,
			TotalScore: int(math.Round(relation.Clamp(b.TotalScore, 0, 100))),
			Breakdown:  b,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Breakdown.TotalScore > recs[j].Breakdown.TotalScore
	})

	if len(recs) > e.cfg.RecommendationLimit {
		recs = recs[:e.cfg.RecommendationLimit]
	}
	return recs
}

// EstimateTeamWinRate is only defined for two full sides and returns nil
// otherwise. Ally and enemy always sum to 100.
func (e *Engine) EstimateTeamWinRate(allies, enemies []int, p *relation.Proficiency) *TeamWinRate {
	if len(allies) != TeamSize || len(enemies) != TeamSize {
		return nil
	}

	var net float64
	for _, id := range allies {
		net += (e.est.HeroWinRate(id) - relation.Neutral) * e.cfg.TeamVersionWeight
	}
	for _, id := range enemies {
		net -= (e.est.HeroWinRate(id) - relation.Neutral) * e.cfg.TeamVersionWeight
	}

	for _, a := range allies {
		for _, en := range enemies {
			pair := e.est.CounterRate(a, en) - e.est.CounterRate(en, a)
			net += pair * e.cfg.TeamCounterWeight
		}
	}

	// every ally counts, so an uncovered hero pulls the mean down
	if p != nil {
		var total float64
		for _, id := range allies {
			total += e.est.ProficiencyScore(id, p)
		}
		mean := total / float64(len(allies))
		net += (mean - NeutralScore) / NeutralScore * e.cfg.TeamProficiencyWeight
	}

	ally := relation.Clamp(50+net, e.cfg.TeamFloor, e.cfg.TeamCeil)
	return splitHundred(ally)
}

// splitHundred derives the smaller side from the larger one; 100-x is exact in
// floating point for x in [50,100], so the pair sums to exactly 100.
func splitHundred(ally float64) *TeamWinRate {
	if ally >= 50 {
		return &TeamWinRate{Ally: ally, Enemy: 100 - ally}
	}
	enemy := 100 - ally
	return &TeamWinRate{Ally: 100 - enemy, Enemy: enemy}
}
