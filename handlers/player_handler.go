package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/scoreboard/services"
)

// PlayerHandler serves standings, team pages and player profiles.
type PlayerHandler struct {
	playerService    services.PlayerService
	standingsService services.StandingsService
}

func NewPlayerHandler(ps services.PlayerService, ss services.StandingsService) *PlayerHandler {
	return &PlayerHandler{
		playerService:    ps,
		standingsService: ss,
	}
}

// nameFromURL returns a decoded name path parameter ("Eagles%20A" -> "Eagles A").
func nameFromURL(r *http.Request, paramName string) string {
	raw := chi.URLParam(r, paramName)
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// Standings godoc
// @Summary Overall standings
// @Tags standings
// @Produce json
// @Success 200 {object} map[string]interface{} "standings"
// @Router /standings [get]
func (h *PlayerHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.Overall(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GroupStandings godoc
// @Summary Standings per group
// @Tags standings
// @Produce json
// @Success 200 {object} map[string]interface{} "groups"
// @Router /standings/groups [get]
func (h *PlayerHandler) GroupStandings(w http.ResponseWriter, r *http.Request) {
	groups, err := h.standingsService.ByGroup(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.playerService.GetTeam(r.Context(), nameFromURL(r, "teamName"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	profile, err := h.playerService.GetProfile(r.Context(), nameFromURL(r, "playerName"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) UploadPlayerPhoto(w http.ResponseWriter, r *http.Request) {
	file, contentType, err := readUpload(r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	player, err := h.playerService.UploadPhoto(r.Context(), nameFromURL(r, "playerName"), file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
