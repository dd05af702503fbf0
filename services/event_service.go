package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
)

type EventInput struct {
	Name      string           `json:"name"`
	EventType models.EventKind `json:"eventType"`
	Gender    models.Gender    `json:"gender"`
	Category  string           `json:"category"`
	Date      string           `json:"date"`      // YYYY-MM-DD
	StartTime string           `json:"startTime"` // HH:MM
	Venue     *string          `json:"venue"`
	Rules     json.RawMessage  `json:"rules"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int, input EventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
}

type eventService struct {
	tx        repositories.TxManager
	eventRepo repositories.EventRepository
	heatRepo  repositories.HeatRepository
	logger    *slog.Logger
}

func NewEventService(
	tx repositories.TxManager,
	eventRepo repositories.EventRepository,
	heatRepo repositories.HeatRepository,
	logger *slog.Logger,
) EventService {
	return &eventService{tx: tx, eventRepo: eventRepo, heatRepo: heatRepo, logger: logger}
}

func (s *eventService) CreateEvent(ctx context.Context, input EventInput) (*models.Event, error) {
	event, err := buildEvent(input)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("event created", slog.Int("event_id", event.ID), slog.String("kind", string(event.Kind)))
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int, input EventInput) (*models.Event, error) {
	updated, err := buildEvent(input)
	if err != nil {
		return nil, err
	}
	updated.ID = id

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.eventRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		if current.Kind != updated.Kind {
			return validationError("eventType cannot be changed (was %s)", current.Kind)
		}
		count, err := s.heatRepo.CountByEvent(ctx, exec, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrEventLocked
		}
		updated.CreatedAt = current.CreatedAt
		return handleRepositoryError(s.eventRepo.Update(ctx, exec, updated))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.List(ctx)
}

func buildEvent(input EventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if input.EventType != models.EventKindTrack && input.EventType != models.EventKindField {
		return nil, validationError("eventType must be TRACK or FIELD")
	}
	if input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return nil, validationError("gender must be MALE or FEMALE")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, validationError("category is required")
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, validationError("date must be in YYYY-MM-DD format")
	}
	startTime := input.StartTime
	if startTime == "" {
		startTime = "08:00"
	}
	if !clockPattern.MatchString(startTime) {
		return nil, validationError("startTime must be in HH:MM format")
	}

	rules, err := normalizeRules(input.EventType, input.Rules)
	if err != nil {
		return nil, err
	}

	return &models.Event{
		Name:      name,
		Kind:      input.EventType,
		Gender:    input.Gender,
		Category:  category,
		Date:      date,
		StartTime: startTime,
		Venue:     input.Venue,
		Rules:     rules,
	}, nil
}

// normalizeRules проверяет набор ключей rules для вида события и типы значений.
func normalizeRules(kind models.EventKind, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}"), nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil, validationError("rules must be a JSON object")
	}

	allowed, foreign := models.TrackRuleKeys, models.FieldRuleKeys
	if kind == models.EventKindField {
		allowed, foreign = models.FieldRuleKeys, models.TrackRuleKeys
	}
	for key := range keys {
		if slices.Contains(allowed, key) {
			continue
		}
		if slices.Contains(foreign, key) {
			return nil, fmt.Errorf("%w: %q on a %s event", ErrRuleKeyKindMismatch, key, kind)
		}
		return nil, validationError("unknown rules key %q", key)
	}

	probe := &models.Event{Kind: kind, Rules: trimmed}
	switch kind {
	case models.EventKindTrack:
		rules, err := probe.GetTrackRules()
		if err != nil {
			return nil, validationError("invalid track rules: %v", err)
		}
		if rules.MaxAthletesPerHeat != nil && *rules.MaxAthletesPerHeat <= 0 {
			return nil, validationError("rules.maxAthletesPerHeat must be positive")
		}
	case models.EventKindField:
		rules, err := probe.GetFieldRules()
		if err != nil {
			return nil, validationError("invalid field rules: %v", err)
		}
		for key, v := range map[string]*int{
			"maxAthletesPerFlight": rules.MaxAthletesPerFlight,
			"attempts":             rules.Attempts,
			"finalists":            rules.Finalists,
		} {
			if v != nil && *v <= 0 {
				return nil, validationError("rules.%s must be positive", key)
			}
		}
	}
	return json.RawMessage(trimmed), nil
}
