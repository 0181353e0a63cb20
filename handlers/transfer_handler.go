package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

const maxImportBytes = 16 << 20

type TransferHandler struct {
	transferService services.TransferService
}

func NewTransferHandler(s services.TransferService) *TransferHandler {
	return &TransferHandler{transferService: s}
}

// Export godoc
// @Summary Export all matches
// @Tags transfer
// @Produce json
// @Success 200 {object} services.ExportDocument
// @Security BearerAuth
// @Router /export [get]
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.transferService.Export(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "scoreboard-"+doc.ExportedAt.Format("20060102-150405")+".json"))
	if err := writeJSON(w, http.StatusOK, doc, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Import godoc
// @Summary Import matches from an export document
// @Tags transfer
// @Description Every row is validated first; one bad row rejects the whole document.
// @Accept json
// @Produce json
// @Param body body services.ExportDocument true "Export document"
// @Success 201 {object} services.ImportResult
// @Failure 422 {object} map[string]interface{} "Errors keyed by matches[i].field"
// @Security BearerAuth
// @Router /import [post]
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	result, err := h.transferService.Import(r.Context(), r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
