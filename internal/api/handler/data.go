package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/draftboard/internal/api/response"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/draft"
	"github.com/mcoot/draftboard/internal/services/rankings"
	"github.com/mcoot/draftboard/internal/services/roster"
)

// DataHandler serves the static roster and ranking data
type DataHandler struct {
	controller *draft.Controller
	roster     *roster.Service
	rankings   *rankings.Service
}

// NewDataHandler creates a new data handler
func NewDataHandler(controller *draft.Controller, rosterService *roster.Service, rankingsService *rankings.Service) *DataHandler {
	return &DataHandler{
		controller: controller,
		roster:     rosterService,
		rankings:   rankingsService,
	}
}

// Health handles GET /api/v1/health
func (h *DataHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:         "ok",
		RosterLoaded:   h.roster.IsLoaded(),
		RosterPlayers:  h.roster.Count(),
		RankingsLoaded: h.rankings.IsLoaded(),
		Rankings:       h.rankings.Count(),
		Sessions:       len(h.controller.ListSessions(r.Context())),
	})
}

// Player handles GET /api/v1/roster/{id}
func (h *DataHandler) Player(w http.ResponseWriter, r *http.Request) {
	if !h.roster.IsLoaded() {
		WriteError(w, model.ErrRosterNotLoaded)
		return
	}

	player, ok := h.roster.Lookup(model.PlayerID(mux.Vars(r)["id"]))
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Rankings handles GET /api/v1/rankings with an optional position filter
func (h *DataHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	position, err := model.ParsePosition(r.URL.Query().Get("position"))
	if err != nil {
		WriteError(w, err)
		return
	}

	idx := h.roster.Index()
	list := response.RankingList{Rankings: []response.Ranking{}}
	for _, rp := range h.rankings.All() {
		if position != "" && rp.Position != position {
			continue
		}
		id, resolved := idx.Resolve(rp.Name)
		list.Rankings = append(list.Rankings, response.Ranking{
			Rank:     rp.Rank,
			Tier:     rp.Tier,
			Name:     rp.Name,
			Position: string(rp.Position),
			PlayerID: string(id),
			Resolved: resolved,
		})
	}

	response.JSON(w, http.StatusOK, list)
}
