package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

// PreferenceHandler stores UI settings per browser. The client id is chosen
// by the client and is not a secret.
type PreferenceHandler struct {
	preferenceService services.PreferenceService
}

func NewPreferenceHandler(s services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: s}
}

func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferenceService.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SavePreferences godoc
// @Summary Merge UI preferences
// @Tags preferences
// @Description An empty string removes a key.
// @Accept json
// @Produce json
// @Param clientID path string true "Client id"
// @Param body body models.Preferences true "Key/value pairs"
// @Success 200 {object} map[string]interface{} "preferences"
// @Failure 422 {object} map[string]interface{} "Unknown key or bad value"
// @Router /preferences/{clientID} [put]
func (h *PreferenceHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var input models.Preferences
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prefs, err := h.preferenceService.Save(r.Context(), chi.URLParam(r, "clientID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PreferenceHandler) ResetPreferences(w http.ResponseWriter, r *http.Request) {
	if err := h.preferenceService.Reset(r.Context(), chi.URLParam(r, "clientID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
