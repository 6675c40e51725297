package scoring

import (
	"fmt"
	"math"
)

// WeightProfile is one named, versioned set of sub-score weights.
type WeightProfile struct {
	Name              string  `json:"name"`
	Version           int     `json:"version"`
	VersionWinRate    float64 `json:"version_win_rate"`
	CounterRelation   float64 `json:"counter_relation"`
	SynergyRelation   float64 `json:"synergy_relation"`
	PlayerProficiency float64 `json:"player_proficiency"`
}

const (
	ProfileWithPlayer    = "with-player"
	ProfileWithoutPlayer = "without-player"
)

var (
	WithoutPlayerWeights = WeightProfile{
		Name:            ProfileWithoutPlayer,
		Version:         1,
		VersionWinRate:  0.35,
		CounterRelation: 0.65,
	}

	WithPlayerWeights = WeightProfile{
		Name:              ProfileWithPlayer,
		Version:           1,
		VersionWinRate:    0.20,
		CounterRelation:   0.45,
		SynergyRelation:   0.20,
		PlayerProficiency: 0.15,
	}
)

func (w WeightProfile) Sum() float64 {
	return w.VersionWinRate + w.CounterRelation + w.SynergyRelation + w.PlayerProficiency
}

// Validate checks the weights sum to 1 and that the counter relation carries
// the largest single weight.
func (w WeightProfile) Validate() error {
	if math.Abs(w.Sum()-1) > 1e-9 {
		return fmt.Errorf("profile %s: weights sum to %f, want 1", w.Name, w.Sum())
	}
	for _, v := range []float64{w.VersionWinRate, w.SynergyRelation, w.PlayerProficiency} {
		if v < 0 {
			return fmt.Errorf("profile %s: negative weight", w.Name)
		}
		if v >= w.CounterRelation {
			return fmt.Errorf("profile %s: counter relation must be the largest weight", w.Name)
		}
	}
	return nil
}

// SelectProfile picks the profile by whether a player is active. There is no
// mixed state between the two.
func (c Config) SelectProfile(hasPlayer bool) WeightProfile {
	if hasPlayer {
		return c.WithPlayer
	}
	return c.WithoutPlayer
}
