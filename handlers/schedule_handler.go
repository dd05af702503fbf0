package handlers

import (
	"net/http"

	"github.com/Dosada05/athletics-meet/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// Generate обрабатывает POST /schedule/generate. Ничего не сохраняет.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.ScheduleRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.GenerateSchedule(r.Context(), req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
