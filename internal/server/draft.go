package server

import (
	"context"
	"errors"

	"draft-assistant/internal/domain"
	"draft-assistant/internal/draft"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type DraftServer struct {
	draftSvc  *service.DraftService
	statsSvc  *service.StatsService
	playerSvc *service.PlayerService
	index     *hero.Index
	logger    zerolog.Logger
}

func NewDraftServer(draftSvc *service.DraftService, statsSvc *service.StatsService, playerSvc *service.PlayerService, index *hero.Index, logger zerolog.Logger) *DraftServer {
	return &DraftServer{draftSvc: draftSvc, statsSvc: statsSvc, playerSvc: playerSvc, index: index, logger: logger}
}

func (s *DraftServer) CreateDraft(ctx context.Context, req *connect.Request[CreateDraftRequest]) (*connect.Response[DraftResponse], error) {
	sess, err := s.draftSvc.Create(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.draftResponse(ctx, sess.ID, sess.Snapshot())), nil
}

func (s *DraftServer) GetDraft(ctx context.Context, req *connect.Request[GetDraftRequest]) (*connect.Response[DraftResponse], error) {
	sess, err := s.draftSvc.Get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.draftResponse(ctx, sess.ID, sess.Snapshot())), nil
}

func (s *DraftServer) PickHero(ctx context.Context, req *connect.Request[PickHeroRequest]) (*connect.Response[DraftResponse], error) {
	side, err := draft.ParseSide(req.Msg.Side)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.draftSvc.Pick(ctx, req.Msg.SessionID, side, req.Msg.Slot, req.Msg.Hero)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.draftResponse(ctx, req.Msg.SessionID, snap)), nil
}

func (s *DraftServer) VacateSlot(ctx context.Context, req *connect.Request[VacateSlotRequest]) (*connect.Response[DraftResponse], error) {
	side, err := draft.ParseSide(req.Msg.Side)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.draftSvc.Vacate(ctx, req.Msg.SessionID, side, req.Msg.Slot)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.draftResponse(ctx, req.Msg.SessionID, snap)), nil
}

func (s *DraftServer) SelectPlayer(ctx context.Context, req *connect.Request[SelectPlayerRequest]) (*connect.Response[DraftResponse], error) {
	snap, err := s.draftSvc.SelectPlayer(ctx, req.Msg.SessionID, req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.draftResponse(ctx, req.Msg.SessionID, snap)), nil
}

func (s *DraftServer) DeleteDraft(ctx context.Context, req *connect.Request[DeleteDraftRequest]) (*connect.Response[DeleteDraftResponse], error) {
	s.draftSvc.Delete(ctx, req.Msg.SessionID)
	return connect.NewResponse(&DeleteDraftResponse{}), nil
}

func (s *DraftServer) ListHeroes(ctx context.Context, req *connect.Request[ListHeroesRequest]) (*connect.Response[ListHeroesResponse], error) {
	heroes := s.index.All()
	if req.Msg.Archetype != "" {
		heroes = s.index.ByArchetype(domain.Archetype(req.Msg.Archetype))
	}

	// statistics are optional here; the roster is listed either way
	table, _ := s.statsSvc.Table()

	views := make([]HeroView, 0, len(heroes))
	for _, h := range heroes {
		v := HeroView{Hero: h}
		if hs, ok := table.Lookup(h.ID); ok {
			wr := hs.WinRate
			v.WinRate = &wr
			v.Picks = hs.Picks
		}
		views = append(views, v)
	}
	return connect.NewResponse(&ListHeroesResponse{Heroes: views}), nil
}

func (s *DraftServer) ListPlayers(ctx context.Context, req *connect.Request[ListPlayersRequest]) (*connect.Response[ListPlayersResponse], error) {
	players, err := s.playerSvc.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if players == nil {
		players = []domain.PlayerProfile{}
	}
	return connect.NewResponse(&ListPlayersResponse{Players: players}), nil
}

func (s *DraftServer) RegisterPlayer(ctx context.Context, req *connect.Request[RegisterPlayerRequest]) (*connect.Response[PlayerResponse], error) {
	if req.Msg.ID == "" || req.Msg.AccountID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id and account_id are required"))
	}
	p, err := s.playerSvc.Register(ctx, domain.PlayerProfile{
		ID:        req.Msg.ID,
		AccountID: req.Msg.AccountID,
		Name:      req.Msg.Name,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlayerResponse{Player: p}), nil
}

func (s *DraftServer) RefreshPlayer(ctx context.Context, req *connect.Request[RefreshPlayerRequest]) (*connect.Response[PlayerDataResponse], error) {
	data, err := s.playerSvc.Proficiency(ctx, req.Msg.PlayerID, true)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlayerDataResponse{Data: data}), nil
}

func (s *DraftServer) RefreshStats(ctx context.Context, req *connect.Request[RefreshStatsRequest]) (*connect.Response[DataQualityResponse], error) {
	if req.Msg.IncludePlayers {
		if err := s.playerSvc.InvalidateAll(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate player caches")
		}
	}

	table, err := s.statsSvc.Load(ctx, true)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DataQualityResponse{
		Generation: table.Generation(),
		Quality:    table.Quality(),
	}), nil
}

func (s *DraftServer) GetDataQuality(ctx context.Context, req *connect.Request[GetDataQualityRequest]) (*connect.Response[DataQualityResponse], error) {
	table, err := s.statsSvc.Table()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DataQualityResponse{
		Generation: table.Generation(),
		Quality:    table.Quality(),
	}), nil
}

func (s *DraftServer) draftResponse(ctx context.Context, sessionID string, snap draft.Snapshot) *DraftResponse {
	resp := &DraftResponse{
		SessionID:     sessionID,
		CurrentPlayer: snap.CurrentPlayer,
		Version:       snap.Version,
	}

	if sess, err := s.draftSvc.Get(ctx, sessionID); err == nil {
		resp.Allies = s.slots(sess.Slots(draft.Allies))
		resp.Enemies = s.slots(sess.Slots(draft.Enemies))
	}

	result, err := s.draftSvc.Evaluate(ctx, sessionID)
	if err != nil {
		resp.EvaluationError = err.Error()
		return resp
	}
	resp.Evaluation = result
	return resp
}

func (s *DraftServer) slots(ids []int) []Slot {
	out := make([]Slot, len(ids))
	for i, id := range ids {
		out[i] = Slot{Index: i}
		if h, ok := s.index.ByID(id); ok {
			out[i].Hero = &h
		}
	}
	return out
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, draft.ErrUnknownSide),
		errors.Is(err, draft.ErrSlotOutOfRange),
		errors.Is(err, draft.ErrDuplicateHero),
		errors.Is(err, draft.ErrSlotOccupied):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownPlayer),
		errors.Is(err, service.ErrUnknownHero):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, service.ErrStatsNotLoaded):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, service.ErrStatsUnavailable),
		errors.Is(err, service.ErrPlayerDataUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
