package handlers

import (
	"net/http"

	"github.com/Dosada05/athletics-meet/services"
)

type HeatHandler struct {
	heatService services.HeatService
}

func NewHeatHandler(hs services.HeatService) *HeatHandler {
	return &HeatHandler{heatService: hs}
}

// GenerateHeats обрабатывает POST /events/{eventID}/heats.
// Пустое тело означает стратегию по умолчанию.
func (h *HeatHandler) GenerateHeats(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req services.GenerateHeatsRequest
	if err := readOptionalJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.heatService.GenerateHeats(r.Context(), eventID, req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateFlights обрабатывает POST /events/{eventID}/flights
func (h *HeatHandler) GenerateFlights(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.heatService.GenerateFlights(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HeatHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	heats, err := h.heatService.ListHeats(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"heats": heats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
