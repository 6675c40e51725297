package server

import (
	"draft-assistant/internal/domain"
	"draft-assistant/internal/draft"
	"draft-assistant/internal/stats"
)

type CreateDraftRequest struct{}

type GetDraftRequest struct {
	SessionID string `json:"session_id"`
}

type PickHeroRequest struct {
	SessionID string `json:"session_id"`
	Side      string `json:"side"`
	Slot      int    `json:"slot"`
	Hero      string `json:"hero"`
}

type VacateSlotRequest struct {
	SessionID string `json:"session_id"`
	Side      string `json:"side"`
	Slot      int    `json:"slot"`
}

type SelectPlayerRequest struct {
	SessionID string `json:"session_id"`
	// empty clears the selection
	PlayerID string `json:"player_id"`
}

type DeleteDraftRequest struct {
	SessionID string `json:"session_id"`
}

type DeleteDraftResponse struct{}

type Slot struct {
	Index int          `json:"index"`
	Hero  *domain.Hero `json:"hero,omitempty"`
}

// DraftResponse carries the draft state and its evaluation. A mutation that
// succeeded while statistics are unavailable still returns the new state,
// with EvaluationError set instead of Evaluation.
type DraftResponse struct {
	SessionID       string        `json:"session_id"`
	Allies          []Slot        `json:"allies"`
	Enemies         []Slot        `json:"enemies"`
	CurrentPlayer   string        `json:"current_player,omitempty"`
	Version         uint64        `json:"version"`
	Evaluation      *draft.Result `json:"evaluation,omitempty"`
	EvaluationError string        `json:"evaluation_error,omitempty"`
}

type ListHeroesRequest struct {
	Archetype string `json:"archetype,omitempty"`
}

type HeroView struct {
	domain.Hero
	WinRate *float64 `json:"win_rate,omitempty"`
	Picks   int      `json:"picks"`
}

type ListHeroesResponse struct {
	Heroes []HeroView `json:"heroes"`
}

type ListPlayersRequest struct{}

type ListPlayersResponse struct {
	Players []domain.PlayerProfile `json:"players"`
}

type RegisterPlayerRequest struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

type PlayerResponse struct {
	Player *domain.PlayerProfile `json:"player"`
}

type RefreshPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type PlayerDataResponse struct {
	Data *domain.PlayerData `json:"data"`
}

type RefreshStatsRequest struct {
	// also drop every cached player history
	IncludePlayers bool `json:"include_players"`
}

type GetDataQualityRequest struct{}

type DataQualityResponse struct {
	Generation uint64        `json:"generation"`
	Quality    stats.Quality `json:"quality"`
}
