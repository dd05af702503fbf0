package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/athletics-meet/metrics"
	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/schedule"
)

type ScheduleDefaults struct {
	Days               int
	TrackGapMinutes    int
	AthleteRestMinutes int
}

type ScheduleRequest struct {
	StartDate          string `json:"startDate"`
	Days               *int   `json:"days"`
	TrackGapMinutes    *int   `json:"trackGapMinutes"`
	AthleteRestMinutes *int   `json:"athleteRestMinutes"`
}

type ScheduledEventView struct {
	EventID   int               `json:"eventId"`
	Name      string            `json:"name"`
	EventType models.EventKind  `json:"eventType"`
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Venue     *string           `json:"venue"`
	Conflicts []models.Conflict `json:"conflicts"`
}

type ScheduleDayView struct {
	Date   string               `json:"date"`
	Events []ScheduledEventView `json:"events"`
}

type ScheduleView struct {
	Days []ScheduleDayView `json:"days"`
}

type ScheduleService interface {
	GenerateSchedule(ctx context.Context, req ScheduleRequest) (*ScheduleView, error)
}

type scheduleService struct {
	eventRepo repositories.EventRepository
	defaults  ScheduleDefaults
	metrics   *metrics.Manager
	logger    *slog.Logger
}

func NewScheduleService(
	eventRepo repositories.EventRepository,
	defaults ScheduleDefaults,
	metricsManager *metrics.Manager,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{eventRepo: eventRepo, defaults: defaults, metrics: metricsManager, logger: logger}
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, req ScheduleRequest) (*ScheduleView, error) {
	defer s.metrics.ObserveOperation("generate_schedule", time.Now())

	opts, err := s.resolveOptions(req)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	days := schedule.Build(events, opts)

	view := &ScheduleView{Days: make([]ScheduleDayView, 0, len(days))}
	conflicts := make(map[string]int)
	placed := 0
	for _, day := range days {
		dv := ScheduleDayView{Date: day.Date.Format(dateLayout), Events: make([]ScheduledEventView, 0, len(day.Slots))}
		for _, slot := range day.Slots {
			for _, c := range slot.Conflicts {
				conflicts[string(c.Type)]++
			}
			dv.Events = append(dv.Events, ScheduledEventView{
				EventID:   slot.Event.ID,
				Name:      slot.Event.Name,
				EventType: slot.Event.Kind,
				StartTime: schedule.FormatMinute(slot.StartMinute),
				EndTime:   schedule.FormatMinute(slot.EndMinute),
				Venue:     slot.Event.Venue,
				Conflicts: slot.Conflicts,
			})
			placed++
		}
		view.Days = append(view.Days, dv)
	}

	s.metrics.ScheduleGenerated(conflicts)
	if dropped := len(events) - placed; dropped > 0 {
		s.logger.Warn("events did not fit into the schedule window",
			slog.Int("dropped", dropped), slog.Int("days", opts.Days))
	}
	return view, nil
}

func (s *scheduleService) resolveOptions(req ScheduleRequest) (schedule.Options, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return schedule.Options{}, validationError("startDate must be in YYYY-MM-DD format")
	}

	opts := schedule.Options{
		StartDate:          start,
		Days:               s.defaults.Days,
		TrackGapMinutes:    s.defaults.TrackGapMinutes,
		AthleteRestMinutes: s.defaults.AthleteRestMinutes,
	}
	if req.Days != nil {
		opts.Days = *req.Days
	}
	if req.TrackGapMinutes != nil {
		opts.TrackGapMinutes = *req.TrackGapMinutes
	}
	if req.AthleteRestMinutes != nil {
		opts.AthleteRestMinutes = *req.AthleteRestMinutes
	}

	if opts.Days < 1 || opts.Days > schedule.MaxDays {
		return schedule.Options{}, validationError("days must be between 1 and %d", schedule.MaxDays)
	}
	if opts.TrackGapMinutes < 0 || opts.TrackGapMinutes > schedule.DayWindowMinutes {
		return schedule.Options{}, validationError("trackGapMinutes must be between 0 and %d", schedule.DayWindowMinutes)
	}
	if opts.AthleteRestMinutes < 0 || opts.AthleteRestMinutes > schedule.DayWindowMinutes {
		return schedule.Options{}, validationError("athleteRestMinutes must be between 0 and %d", schedule.DayWindowMinutes)
	}
	return opts, nil
}
