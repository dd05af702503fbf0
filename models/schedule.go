package models

type ConflictType string

const (
	ConflictLunchViolation  ConflictType = "LUNCH_VIOLATION"
	ConflictAthleteConflict ConflictType = "ATHLETE_CONFLICT"
	ConflictRestViolation   ConflictType = "REST_VIOLATION"
)

type Conflict struct {
	Type               ConflictType `json:"type"`
	Description        string       `json:"description"`
	AffectedAthleteIDs []int        `json:"affectedAthleteIds"`
}

// ScheduledSlot is a computed placement of an event. Never persisted.
type ScheduledSlot struct {
	Event       *Event
	DayIndex    int
	StartMinute int // minutes since midnight
	EndMinute   int
	Conflicts   []Conflict
}

func (s *ScheduledSlot) Overlaps(other *ScheduledSlot) bool {
	return s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}
