package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/athletics-meet/heats"
	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/services"
)

func serve(t *testing.T, method, pattern, path, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrEventNotFound, http.StatusNotFound},
		{services.ErrHeatNotInEvent, http.StatusNotFound},
		{services.ErrHeatsAlreadyExist, http.StatusConflict},
		{services.ErrResultsAlreadyExist, http.StatusConflict},
		{services.ErrHeatSizeNotConfigured, http.StatusConflict},
		{services.ErrFieldEventHasNoHeats, http.StatusUnprocessableEntity},
		{services.ErrNoEligibleAthletes, http.StatusUnprocessableEntity},
		{errors.Join(services.ErrValidationFailed, errors.New("bad")), http.StatusUnprocessableEntity},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
			body := decode(t, rec)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "boom", "internal details are not leaked")
			} else {
				assert.Equal(t, tt.err.Error(), body["error"])
			}
		})
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"empty", "", "body must not be empty"},
		{"syntax", `{"name":`, "badly-formed JSON"},
		{"unknown", `{"nope":1}`, "unknown key"},
		{"type", `{"name":5}`, `incorrect JSON type for field "name"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst struct {
				Name string `json:"name"`
			}
			err := readJSON(httptest.NewRecorder(), req, &dst)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEventHandler_Create(t *testing.T) {
	svc := &fakeEventService{event: &models.Event{ID: 3, Name: "100m", Kind: models.EventKindTrack}}
	h := NewEventHandler(svc)

	rec := serve(t, http.MethodPost, "/events", "/events",
		`{"name":"100m","eventType":"TRACK","gender":"MALE","category":"U18","date":"2026-05-02","rules":{"maxAthletesPerHeat":8}}`,
		h.Create)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, models.EventKindTrack, svc.created.EventType)
	assert.JSONEq(t, `{"maxAthletesPerHeat":8}`, string(svc.created.Rules))
	event := decode(t, rec)["event"].(map[string]interface{})
	assert.EqualValues(t, 3, event["id"])
}

func TestEventHandler_UpdateLocked(t *testing.T) {
	svc := &fakeEventService{err: services.ErrEventLocked}
	rec := serve(t, http.MethodPut, "/events/{eventID}", "/events/12",
		`{"name":"100m","eventType":"TRACK","gender":"MALE","category":"U18","date":"2026-05-02"}`,
		NewEventHandler(svc).Update)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 12, svc.updateID)
}

func TestEventHandler_BadID(t *testing.T) {
	rec := serve(t, http.MethodGet, "/events/{eventID}", "/events/abc", "", NewEventHandler(&fakeEventService{}).Get)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodGet, "/events/{eventID}", "/events/0", "", NewEventHandler(&fakeEventService{}).Get)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAthleteHandler_ListFilter(t *testing.T) {
	svc := &fakeAthleteService{athletes: []*models.Athlete{{ID: 1}}}
	rec := serve(t, http.MethodGet, "/athletes", "/athletes?gender=female&category=U18", "",
		NewAthleteHandler(svc).List)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Gender)
	assert.Equal(t, models.GenderFemale, *svc.filter.Gender)
	require.NotNil(t, svc.filter.Category)
	assert.Equal(t, "U18", *svc.filter.Category)
	assert.Len(t, decode(t, rec)["athletes"], 1)
}

func TestAthleteHandler_CreateConflict(t *testing.T) {
	svc := &fakeAthleteService{err: services.ErrBibNumberTaken}
	rec := serve(t, http.MethodPost, "/athletes", "/athletes",
		`{"name":"Ann","bibNumber":"101","gender":"FEMALE","category":"U18"}`, NewAthleteHandler(svc).Create)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHeatHandler_GenerateHeats(t *testing.T) {
	svc := &fakeHeatService{summary: &services.HeatGenerationSummary{
		EventID: 5, TotalAthletes: 2, TotalHeats: 1,
		Heats: []services.HeatSummary{{HeatID: 11, HeatNumber: 1, Lanes: []services.LaneSummary{
			{LaneNumber: 4, AthleteID: 1, AthleteName: "A", BibNumber: "1"},
			{LaneNumber: 5, AthleteID: 2, AthleteName: "B", BibNumber: "2"},
		}}},
	}}
	h := NewHeatHandler(svc)

	rec := serve(t, http.MethodPost, "/events/{eventID}/heats", "/events/5/heats",
		`{"seedingStrategy":"RANDOM","laneAssignment":"STANDARD"}`, h.GenerateHeats)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 5, svc.eventID)
	assert.Equal(t, heats.SeedingRandom, svc.req.SeedingStrategy)

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["totalHeats"])
	lanes := body["heats"].([]interface{})[0].(map[string]interface{})["lanes"].([]interface{})
	assert.EqualValues(t, 4, lanes[0].(map[string]interface{})["laneNumber"])
}

func TestHeatHandler_GenerateHeatsEmptyBody(t *testing.T) {
	svc := &fakeHeatService{summary: &services.HeatGenerationSummary{EventID: 5}}
	rec := serve(t, http.MethodPost, "/events/{eventID}/heats", "/events/5/heats", "", NewHeatHandler(svc).GenerateHeats)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, services.GenerateHeatsRequest{}, svc.req)
}

func TestHeatHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"field event", services.ErrFieldEventHasNoHeats, http.StatusUnprocessableEntity},
		{"already generated", services.ErrHeatsAlreadyExist, http.StatusConflict},
		{"unknown event", services.ErrEventNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, http.MethodPost, "/events/{eventID}/heats", "/events/5/heats", "",
				NewHeatHandler(&fakeHeatService{err: tt.err}).GenerateHeats)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHeatHandler_Flights(t *testing.T) {
	svc := &fakeHeatService{err: services.ErrTrackEventHasNoFlights}
	rec := serve(t, http.MethodPost, "/events/{eventID}/flights", "/events/8/flights", "", NewHeatHandler(svc).GenerateFlights)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 8, svc.eventID)
}

func TestScheduleHandler_Generate(t *testing.T) {
	svc := &fakeScheduleService{view: &services.ScheduleView{Days: []services.ScheduleDayView{
		{Date: "2026-05-02", Events: []services.ScheduledEventView{{
			EventID: 1, Name: "100m", EventType: models.EventKindTrack, StartTime: "08:00", EndTime: "08:30",
			Conflicts: []models.Conflict{},
		}}},
	}}}
	rec := serve(t, http.MethodPost, "/schedule/generate", "/schedule/generate",
		`{"startDate":"2026-05-02","days":1,"athleteRestMinutes":45}`, NewScheduleHandler(svc).Generate)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-05-02", svc.req.StartDate)
	require.NotNil(t, svc.req.Days)
	assert.Equal(t, 1, *svc.req.Days)
	assert.Nil(t, svc.req.TrackGapMinutes)
	assert.Equal(t, 45, *svc.req.AthleteRestMinutes)

	day := decode(t, rec)["days"].([]interface{})[0].(map[string]interface{})
	event := day["events"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "08:00", event["startTime"])
	assert.Equal(t, []interface{}{}, event["conflicts"])
}

func TestResultHandler_Submit(t *testing.T) {
	rank := 1
	svc := &fakeResultService{response: &services.SubmitResultsResponse{
		EventID: 2, HeatID: 9,
		Summary: services.ResultsSummary{TotalAthletes: 1, FinishedCount: 1},
		Results: []services.RankedResult{{AthleteID: 4, Status: models.ResultStatusFinished, Rank: &rank}},
	}}
	rec := serve(t, http.MethodPost, "/events/{eventID}/heats/{heatID}/results", "/events/2/heats/9/results",
		`{"results":[{"athleteId":4,"bibNumber":"12","status":"FINISHED","resultValue":"10.50s"}]}`,
		NewResultHandler(svc).Submit)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, svc.eventID)
	assert.Equal(t, 9, svc.heatID)
	require.Len(t, svc.submitted.Results, 1)
	assert.Equal(t, "10.50s", *svc.submitted.Results[0].ResultValue)

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["summary"].(map[string]interface{})["finishedCount"])
	assert.Equal(t, false, body["results"].([]interface{})[0].(map[string]interface{})["qualified"])
}

func TestResultHandler_SubmitTwice(t *testing.T) {
	rec := serve(t, http.MethodPost, "/events/{eventID}/heats/{heatID}/results", "/events/2/heats/9/results",
		`{"results":[]}`, NewResultHandler(&fakeResultService{err: services.ErrResultsAlreadyExist}).Submit)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResultHandler_Corrections(t *testing.T) {
	svc := &fakeResultService{report: &services.CorrectionReport{Updated: 2, RerankedEventIDs: []int{1}, FailedEventIDs: []int{}}}
	rec := serve(t, http.MethodPost, "/results/corrections", "/results/corrections",
		`[{"heatId":1,"athleteId":2,"status":"DNF"},{"heatId":1,"athleteId":3,"status":"FINISHED","resultValue":"11.02s"}]`,
		NewResultHandler(svc).ApplyCorrections)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.corrections, 2)
	assert.Equal(t, models.ResultStatusDNF, svc.corrections[0].Status)
	assert.JSONEq(t, `{"updated":2,"rerankedEventIds":[1],"failedEventIds":[]}`, rec.Body.String())
}

func TestResultHandler_ListAndRecalculate(t *testing.T) {
	svc := &fakeResultService{results: []*models.Result{{ID: 1, HeatID: 3}}}
	h := NewResultHandler(svc)

	rec := serve(t, http.MethodGet, "/heats/{heatID}/results", "/heats/3/results", "", h.ListByHeat)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.heatID)

	rec = serve(t, http.MethodPost, "/events/{eventID}/ranks/recalculate", "/events/6/ranks/recalculate", "", h.Recalculate)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, svc.eventID)
}

func TestAuthHandler_Login(t *testing.T) {
	op := &models.Operator{ID: 9, Email: "sec@meet.org", Role: models.RoleOrganizer}
	h := NewAuthHandler(&fakeAuthService{op: op}, "secret", time.Hour)
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	rec := serve(t, http.MethodPost, "/auth/login", "/auth/login", `{"email":"sec@meet.org","password":"longenough"}`, h.Login)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	raw, ok := body["token"].(string)
	require.True(t, ok)

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)
	assert.EqualValues(t, 9, claims["user_id"])
	assert.Equal(t, "organizer", claims["role"])
	assert.EqualValues(t, fixed.Add(time.Hour).Unix(), claims["exp"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{err: services.ErrInvalidCredentials}, "secret", time.Hour)
	rec := serve(t, http.MethodPost, "/auth/login", "/auth/login", `{"email":"x@y.z","password":"wrong"}`, h.Login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
