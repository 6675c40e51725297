package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/goccy/go-json"
)

const DraftServicePath = "/draft.v1.DraftService/"

const (
	CreateDraftProcedure    = DraftServicePath + "CreateDraft"
	GetDraftProcedure       = DraftServicePath + "GetDraft"
	PickHeroProcedure       = DraftServicePath + "PickHero"
	VacateSlotProcedure     = DraftServicePath + "VacateSlot"
	SelectPlayerProcedure   = DraftServicePath + "SelectPlayer"
	DeleteDraftProcedure    = DraftServicePath + "DeleteDraft"
	ListHeroesProcedure     = DraftServicePath + "ListHeroes"
	ListPlayersProcedure    = DraftServicePath + "ListPlayers"
	RegisterPlayerProcedure = DraftServicePath + "RegisterPlayer"
	RefreshPlayerProcedure  = DraftServicePath + "RefreshPlayer"
	RefreshStatsProcedure   = DraftServicePath + "RefreshStats"
	GetDataQualityProcedure = DraftServicePath + "GetDataQuality"
)

// jsonCodec replaces connect's protobuf-only JSON codec so plain structs can
// travel as request and response messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// NewDraftServiceHandler builds the handler for every draft procedure and
// returns the path to mount it on.
func NewDraftServiceHandler(s *DraftServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateDraftProcedure, connect.NewUnaryHandler(CreateDraftProcedure, s.CreateDraft, opts...))
	mux.Handle(GetDraftProcedure, connect.NewUnaryHandler(GetDraftProcedure, s.GetDraft, opts...))
	mux.Handle(PickHeroProcedure, connect.NewUnaryHandler(PickHeroProcedure, s.PickHero, opts...))
	mux.Handle(VacateSlotProcedure, connect.NewUnaryHandler(VacateSlotProcedure, s.VacateSlot, opts...))
	mux.Handle(SelectPlayerProcedure, connect.NewUnaryHandler(SelectPlayerProcedure, s.SelectPlayer, opts...))
	mux.Handle(DeleteDraftProcedure, connect.NewUnaryHandler(DeleteDraftProcedure, s.DeleteDraft, opts...))
	mux.Handle(ListHeroesProcedure, connect.NewUnaryHandler(ListHeroesProcedure, s.ListHeroes, opts...))
	mux.Handle(ListPlayersProcedure, connect.NewUnaryHandler(ListPlayersProcedure, s.ListPlayers, opts...))
	mux.Handle(RegisterPlayerProcedure, connect.NewUnaryHandler(RegisterPlayerProcedure, s.RegisterPlayer, opts...))
	mux.Handle(RefreshPlayerProcedure, connect.NewUnaryHandler(RefreshPlayerProcedure, s.RefreshPlayer, opts...))
	mux.Handle(RefreshStatsProcedure, connect.NewUnaryHandler(RefreshStatsProcedure, s.RefreshStats, opts...))
	mux.Handle(GetDataQualityProcedure, connect.NewUnaryHandler(GetDataQualityProcedure, s.GetDataQuality, opts...))

	return DraftServicePath, mux
}
