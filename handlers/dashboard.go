package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Home godoc
// @Summary Home page overview
// @Tags dashboard
// @Description Live matches, today's upcoming matches, slides and group standings.
// @Produce json
// @Success 200 {object} models.HomeOverview
// @Router /home [get]
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.GetHomeOverview(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
