package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/services"
)

type AthleteHandler struct {
	athleteService services.AthleteService
}

func NewAthleteHandler(as services.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: as}
}

// Create обрабатывает POST /athletes
func (h *AthleteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.AthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.CreateAthlete(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.GetAthlete(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List обрабатывает GET /athletes?gender=FEMALE&category=U18
func (h *AthleteHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.AthleteFilter
	query := r.URL.Query()
	if g := strings.TrimSpace(query.Get("gender")); g != "" {
		gender := models.Gender(strings.ToUpper(g))
		filter.Gender = &gender
	}
	if c := strings.TrimSpace(query.Get("category")); c != "" {
		filter.Category = &c
	}

	athletes, err := h.athleteService.ListAthletes(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
