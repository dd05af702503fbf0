package handlers

import (
	"context"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/services"
)

type fakeEventService struct {
	created  *services.EventInput
	event    *models.Event
	events   []*models.Event
	err      error
	updateID int
}

func (f *fakeEventService) CreateEvent(_ context.Context, input services.EventInput) (*models.Event, error) {
	f.created = &input
	return f.event, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id int, input services.EventInput) (*models.Event, error) {
	f.updateID = id
	f.created = &input
	return f.event, f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, id int) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(context.Context) ([]*models.Event, error) {
	return f.events, f.err
}

type fakeAthleteService struct {
	filter   repositories.AthleteFilter
	athletes []*models.Athlete
	err      error
}

func (f *fakeAthleteService) CreateAthlete(_ context.Context, input services.AthleteInput) (*models.Athlete, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Athlete{ID: 1, Name: input.Name, BibNumber: input.BibNumber, Gender: input.Gender, Category: input.Category}, nil
}

func (f *fakeAthleteService) GetAthlete(_ context.Context, id int) (*models.Athlete, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Athlete{ID: id}, nil
}

func (f *fakeAthleteService) ListAthletes(_ context.Context, filter repositories.AthleteFilter) ([]*models.Athlete, error) {
	f.filter = filter
	return f.athletes, f.err
}

type fakeHeatService struct {
	eventID int
	req     services.GenerateHeatsRequest
	summary *services.HeatGenerationSummary
	heats   []*models.Heat
	err     error
}

func (f *fakeHeatService) GenerateHeats(_ context.Context, eventID int, req services.GenerateHeatsRequest) (*services.HeatGenerationSummary, error) {
	f.eventID, f.req = eventID, req
	return f.summary, f.err
}

func (f *fakeHeatService) GenerateFlights(_ context.Context, eventID int) (*services.HeatGenerationSummary, error) {
	f.eventID = eventID
	return f.summary, f.err
}

func (f *fakeHeatService) ListHeats(_ context.Context, eventID int) ([]*models.Heat, error) {
	f.eventID = eventID
	return f.heats, f.err
}

type fakeScheduleService struct {
	req  services.ScheduleRequest
	view *services.ScheduleView
	err  error
}

func (f *fakeScheduleService) GenerateSchedule(_ context.Context, req services.ScheduleRequest) (*services.ScheduleView, error) {
	f.req = req
	return f.view, f.err
}

type fakeResultService struct {
	eventID, heatID int
	submitted       services.SubmitResultsRequest
	corrections     []services.ResultCorrection
	response        *services.SubmitResultsResponse
	report          *services.CorrectionReport
	results         []*models.Result
	err             error
}

func (f *fakeResultService) SubmitResults(_ context.Context, eventID, heatID int, req services.SubmitResultsRequest) (*services.SubmitResultsResponse, error) {
	f.eventID, f.heatID, f.submitted = eventID, heatID, req
	return f.response, f.err
}

func (f *fakeResultService) ListHeatResults(_ context.Context, heatID int) ([]*models.Result, error) {
	f.heatID = heatID
	return f.results, f.err
}

func (f *fakeResultService) ApplyCorrections(_ context.Context, corrections []services.ResultCorrection) (*services.CorrectionReport, error) {
	f.corrections = corrections
	return f.report, f.err
}

func (f *fakeResultService) RecalculateEventRanks(_ context.Context, eventID int) error {
	f.eventID = eventID
	return f.err
}

type fakeAuthService struct {
	op  *models.Operator
	err error
}

func (f *fakeAuthService) Login(context.Context, models.Credentials) (*models.Operator, error) {
	return f.op, f.err
}

func (f *fakeAuthService) CreateOperator(context.Context, string, string, models.OperatorRole) (*models.Operator, error) {
	return f.op, f.err
}
