package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	EventKindTrack EventKind = "TRACK"
	EventKindField EventKind = "FIELD"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// TrackRules - payload правил для беговых дисциплин.
type TrackRules struct {
	MaxAthletesPerHeat *int    `json:"maxAthletesPerHeat,omitempty"`
	QualificationRule  *string `json:"qualificationRule,omitempty"`
}

// FieldRules - payload правил для технических дисциплин (прыжки, метания).
type FieldRules struct {
	MaxAthletesPerFlight *int `json:"maxAthletesPerFlight,omitempty"`
	Attempts             *int `json:"attempts,omitempty"`
	Finalists            *int `json:"finalists,omitempty"`
}

// Keys allowed in the rules payload of each event kind.
var (
	TrackRuleKeys = []string{"maxAthletesPerHeat", "qualificationRule"}
	FieldRuleKeys = []string{"maxAthletesPerFlight", "attempts", "finalists"}
)

type Event struct {
	ID        int             `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Kind      EventKind       `json:"eventType" db:"kind"`
	Gender    Gender          `json:"gender" db:"gender"`
	Category  string          `json:"category" db:"category"`
	Date      time.Time       `json:"date" db:"event_date"`
	StartTime string          `json:"startTime" db:"start_time"` // "HH:MM"
	Venue     *string         `json:"venue,omitempty" db:"venue"`
	Rules     json.RawMessage `json:"rules" db:"rules"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// GetTrackRules разбирает rules для TRACK события. Для FIELD возвращает nil.
func (e *Event) GetTrackRules() (*TrackRules, error) {
	if e.Kind != EventKindTrack {
		return nil, nil
	}
	var rules TrackRules
	if len(e.Rules) == 0 {
		return &rules, nil
	}
	if err := json.Unmarshal(e.Rules, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse track rules for event %d: %w", e.ID, err)
	}
	return &rules, nil
}

// GetFieldRules is the FIELD counterpart of GetTrackRules.
func (e *Event) GetFieldRules() (*FieldRules, error) {
	if e.Kind != EventKindField {
		return nil, nil
	}
	var rules FieldRules
	if len(e.Rules) == 0 {
		return &rules, nil
	}
	if err := json.Unmarshal(e.Rules, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse field rules for event %d: %w", e.ID, err)
	}
	return &rules, nil
}

func (e *Event) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("Event %d", e.ID)
}
