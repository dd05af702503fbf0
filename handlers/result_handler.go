package handlers

import (
	"net/http"

	"github.com/Dosada05/athletics-meet/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: rs}
}

// Submit обрабатывает POST /events/{eventID}/heats/{heatID}/results
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	heatID, err := getIDFromURL(r, "heatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req services.SubmitResultsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	resp, err := h.resultService.SubmitResults(r.Context(), eventID, heatID, req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByHeat обрабатывает GET /heats/{heatID}/results
func (h *ResultHandler) ListByHeat(w http.ResponseWriter, r *http.Request) {
	heatID, err := getIDFromURL(r, "heatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.ListHeatResults(r.Context(), heatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApplyCorrections обрабатывает POST /results/corrections. Тело - JSON массив исправлений.
func (h *ResultHandler) ApplyCorrections(w http.ResponseWriter, r *http.Request) {
	var corrections []services.ResultCorrection
	if err := readJSON(w, r, &corrections); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.resultService.ApplyCorrections(r.Context(), corrections)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Recalculate обрабатывает POST /events/{eventID}/ranks/recalculate
func (h *ResultHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.RecalculateEventRanks(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"eventId": eventID, "recalculated": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
