package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type SlideHandler struct {
	slideService services.SlideService
}

func NewSlideHandler(s services.SlideService) *SlideHandler {
	return &SlideHandler{slideService: s}
}

func (h *SlideHandler) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.slideService.ListSlides(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"slides": slides}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateSlide godoc
// @Summary Create a slide
// @Tags slides
// @Accept json
// @Produce json
// @Param body body services.SlideInput true "Slide"
// @Success 201 {object} map[string]interface{} "slide"
// @Security BearerAuth
// @Router /slides [post]
func (h *SlideHandler) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var input services.SlideInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slide, err := h.slideService.CreateSlide(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"slide": slide}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SlideHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := getIDFromURL(r, "slideID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SlideInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slide, err := h.slideService.UpdateSlide(r.Context(), slideID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"slide": slide}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SlideHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := getIDFromURL(r, "slideID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.slideService.DeleteSlide(r.Context(), slideID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderSlides godoc
// @Summary Reorder slides
// @Tags slides
// @Description ids lists every slide in its new position.
// @Accept json
// @Produce json
// @Param body body object true "{\"ids\": [3, 1, 2]}"
// @Success 200 {object} map[string]interface{} "slides"
// @Security BearerAuth
// @Router /slides/order [put]
func (h *SlideHandler) ReorderSlides(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []int `json:"ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slides, err := h.slideService.ReorderSlides(r.Context(), input.IDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"slides": slides}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SlideHandler) UploadSlideImage(w http.ResponseWriter, r *http.Request) {
	slideID, err := getIDFromURL(r, "slideID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readUpload(r, "image")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	slide, err := h.slideService.UploadSlideImage(r.Context(), slideID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"slide": slide}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
