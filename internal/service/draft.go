package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"draft-assistant/internal/config"
	"draft-assistant/internal/domain"
	"draft-assistant/internal/draft"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/relation"
	"draft-assistant/internal/scoring"
	"draft-assistant/internal/stats"

	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound = errors.New("draft session not found")
	ErrUnknownHero     = errors.New("unknown hero")
)

type DraftService struct {
	stats   *StatsService
	players *PlayerService
	index   *hero.Index
	scoring scoring.Config
	relCfg  relation.Config
	profCfg relation.ProficiencyConfig
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*draft.Session
}

func NewDraftService(statsSvc *StatsService, players *PlayerService, index *hero.Index, cfg *config.Config, logger zerolog.Logger) *DraftService {
	return &DraftService{
		stats:    statsSvc,
		players:  players,
		index:    index,
		scoring:  cfg.Scoring,
		relCfg:   cfg.Relation,
		profCfg:  cfg.Proficiency,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*draft.Session),
	}
}

func (s *DraftService) Create(ctx context.Context) (*draft.Session, error) {
	sess, err := draft.NewSession()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sess.ID).Msg("draft session created")
	return sess, nil
}

func (s *DraftService) Get(ctx context.Context, sessionID string) (*draft.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// ResolveHero accepts any name a hero is known under. The loaded table adds
// the source's names on top of the roster aliases.
func (s *DraftService) ResolveHero(alias string) (domain.Hero, error) {
	if h, ok := s.index.Resolve(alias); ok {
		return h, nil
	}
	if table, err := s.stats.Table(); err == nil {
		if id, ok := table.Resolve(alias); ok {
			if h, ok := s.index.ByID(id); ok {
				return h, nil
			}
		}
	}
	return domain.Hero{}, fmt.Errorf("%w: %q", ErrUnknownHero, alias)
}

func (s *DraftService) Pick(ctx context.Context, sessionID string, side draft.Side, slot int, heroAlias string) (draft.Snapshot, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return draft.Snapshot{}, err
	}
	h, err := s.ResolveHero(heroAlias)
	if err != nil {
		return sess.Snapshot(), err
	}

	snap, err := sess.Mutate(func(st *draft.State) error {
		return st.Pick(side, slot, h.ID)
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Str("hero", h.Name).Msg("pick rejected")
		return snap, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("side", string(side)).
		Int("slot", slot).
		Str("hero", h.Name).
		Uint64("version", snap.Version).
		Msg("hero picked")
	return snap, nil
}

func (s *DraftService) Vacate(ctx context.Context, sessionID string, side draft.Side, slot int) (draft.Snapshot, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return draft.Snapshot{}, err
	}
	return sess.Mutate(func(st *draft.State) error {
		return st.Vacate(side, slot)
	})
}

// SelectPlayer sets the active player. An empty id clears the selection.
func (s *DraftService) SelectPlayer(ctx context.Context, sessionID, playerID string) (draft.Snapshot, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return draft.Snapshot{}, err
	}
	if playerID != "" {
		if _, err := s.players.Get(ctx, playerID); err != nil {
			return sess.Snapshot(), err
		}
	}

	return sess.Mutate(func(st *draft.State) error {
		st.SetPlayer(playerID)
		return nil
	})
}

// evaluateAttempts bounds recomputation when the draft keeps changing while
// an evaluation runs.
const evaluateAttempts = 3

// Evaluate returns recommendations and the team estimate for the session's
// current state. A published result is reused while the state, the stats
// table and the player data it was computed from are all unchanged.
func (s *DraftService) Evaluate(ctx context.Context, sessionID string) (*draft.Result, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	table, err := s.stats.Table()
	if err != nil {
		return nil, err
	}

	var result *draft.Result
	for attempt := 0; attempt < evaluateAttempts; attempt++ {
		snap := sess.Snapshot()
		data := s.playerData(ctx, snap.CurrentPlayer)

		if r := sess.Result(); r != nil && r.StateVersion == snap.Version && reusable(r, table.Generation(), snap, data) {
			return r, nil
		}

		result, err = s.compute(table, snap, data)
		if err != nil {
			return nil, err
		}
		if sess.Publish(*result) {
			return result, nil
		}
		if stored := sess.Result(); stored != nil {
			return stored, nil
		}

		s.logger.Debug().
			Str("session_id", sessionID).
			Uint64("version", snap.Version).
			Msg("draft changed during evaluation, recomputing")
	}
	return result, nil
}

// playerData loads the selected player's history. A failure only drops the
// player terms from scoring.
func (s *DraftService) playerData(ctx context.Context, playerID string) *domain.PlayerData {
	if playerID == "" {
		return nil
	}
	data, err := s.players.Proficiency(ctx, playerID, false)
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("player data unavailable, scoring without player")
		return nil
	}
	return data
}

// reusable never accepts a result that lacks the data of a selected player,
// so a recovered player source takes effect on the next evaluation.
func reusable(r *draft.Result, generation uint64, snap draft.Snapshot, data *domain.PlayerData) bool {
	if r.TableGeneration != generation {
		return false
	}
	if snap.CurrentPlayer != "" && !r.PlayerDataLoaded {
		return false
	}
	if data == nil {
		return r.SamePlayerData(false, time.Time{})
	}
	return r.SamePlayerData(true, data.FetchedAt)
}

func (s *DraftService) compute(table *stats.Table, snap draft.Snapshot, data *domain.PlayerData) (*draft.Result, error) {
	var prof *relation.Proficiency
	if data != nil {
		prof = relation.NewProficiency(data, s.profCfg, s.now())
	}

	est := relation.NewEstimator(table,
		relation.WithConfig(s.relCfg),
		relation.WithMissingHero(func(heroID int) {
			s.logger.Warn().Int("hero_id", heroID).Uint64("generation", table.Generation()).Msg("hero missing from statistics")
		}),
	)

	engine, err := scoring.NewEngine(est, s.scoring, scoring.WithObserver(func(ev scoring.Event) {
		s.logger.Trace().
			Int("hero_id", ev.HeroID).
			Float64("version", ev.Breakdown.VersionScore).
			Float64("counter", ev.Breakdown.CounterScore).
			Float64("total", ev.Breakdown.TotalScore).
			Str("profile", ev.Breakdown.Profile).
			Msg("hero scored")
	}))
	if err != nil {
		return nil, err
	}

	result := &draft.Result{
		StateVersion:     snap.Version,
		TableGeneration:  table.Generation(),
		Recommendations:  engine.Recommend(s.index.All(), snap.Allies, snap.Enemies, prof),
		WinRate:          engine.EstimateTeamWinRate(snap.Allies, snap.Enemies, prof),
		PlayerDataLoaded: prof != nil,
		ComputedAt:       s.now().UTC(),
	}
	if prof != nil {
		result.PlayerDataAt = data.FetchedAt
	}
	return result, nil
}

// Delete drops a session. Unknown ids are not an error.
func (s *DraftService) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}
