package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	fixtureService services.FixtureService
}

func NewMatchHandler(ms services.MatchService, fs services.FixtureService) *MatchHandler {
	return &MatchHandler{
		matchService:   ms,
		fixtureService: fs,
	}
}

// ListMatches godoc
// @Summary List matches
// @Tags matches
// @Description status accepts upcoming, live, completed and the date filters today and tomorrow.
// @Produce json
// @Param status query string false "Match status"
// @Param group query string false "Group label"
// @Param date query string false "Match date, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{} "matches"
// @Failure 422 {object} map[string]interface{} "Invalid filter"
// @Router /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches, err := h.matchService.ListMatches(r.Context(), services.ListMatchesParams{
		Status: q.Get("status"),
		Group:  q.Get("group"),
		Date:   q.Get("date"),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch godoc
// @Summary Get a match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 404 {object} map[string]string "Match not found"
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateMatch godoc
// @Summary Create a match
// @Tags matches
// @Accept json
// @Produce json
// @Param body body services.MatchInput true "Match"
// @Success 201 {object} map[string]interface{} "match"
// @Failure 422 {object} map[string]interface{} "Validation errors by field"
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/matches/"+strconv.Itoa(match.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMatch godoc
// @Summary Replace the descriptive fields of a match
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.UpdateMatchInput true "Match with the version it was read at"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 409 {object} map[string]string "Stale version"
// @Security BearerAuth
// @Router /matches/{matchID} [put]
func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) GoLive(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.matchService.GoLive)
}

func (h *MatchHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.matchService.Stop)
}

func (h *MatchHandler) changeStatus(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) (*models.Match, error)) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := fn(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Complete godoc
// @Summary Complete a live match
// @Tags matches
// @Description Without a winner the leading team wins; a tie is rejected.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.CompleteInput false "Optional winner and version"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 409 {object} map[string]string "Not live, tied or stale version"
// @Security BearerAuth
// @Router /matches/{matchID}/complete [post]
func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CompleteInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	match, err := h.matchService.Complete(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ToggleScore godoc
// @Summary Toggle one rally slot
// @Tags score
// @Description Flips the slot between 0 and 1. Reaching the win threshold completes the match.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.ToggleInput true "Team 1-2, player 1-2, rally 0-15"
// @Success 200 {object} services.ScoreUpdate
// @Failure 409 {object} map[string]string "Completed match, ambiguous winner or stale version"
// @Failure 422 {object} map[string]interface{} "Slot out of range"
// @Security BearerAuth
// @Router /matches/{matchID}/score [post]
func (h *MatchHandler) ToggleScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ToggleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update, err := h.matchService.ToggleScore(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, update, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamPhoto godoc
// @Summary Upload a team photo
// @Tags matches
// @Accept multipart/form-data
// @Produce json
// @Param matchID path int true "Match ID"
// @Param side path int true "Team side, 1 or 2"
// @Param photo formData file true "Image"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 503 {object} map[string]string "Object storage not configured"
// @Security BearerAuth
// @Router /matches/{matchID}/teams/{side}/photo [post]
func (h *MatchHandler) UploadTeamPhoto(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	side, err := getIDFromURL(r, "side")
	if err != nil || side > 2 {
		badRequestResponse(w, r, errors.New("side must be 1 or 2"))
		return
	}

	file, contentType, err := readUpload(r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	match, err := h.matchService.UploadTeamPhoto(r.Context(), matchID, side, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateFixtures godoc
// @Summary Generate round-robin fixtures for a group
// @Tags matches
// @Accept json
// @Produce json
// @Param group path string true "Group label"
// @Param body body services.FixturesInput true "Rosters and schedule"
// @Success 201 {object} map[string]interface{} "matches"
// @Failure 422 {object} map[string]interface{} "Validation errors by field"
// @Security BearerAuth
// @Router /groups/{group}/fixtures [post]
func (h *MatchHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	var input services.FixturesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.fixtureService.GenerateGroupFixtures(r.Context(), group, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
