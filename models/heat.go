package models

import "time"

// Heat - забег (для TRACK) или поток (flight) для FIELD.
type Heat struct {
	ID         int       `json:"id" db:"id"`
	EventID    int       `json:"eventId" db:"event_id"`
	HeatNumber int       `json:"heatNumber" db:"heat_number"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	Lanes []Lane `json:"lanes,omitempty" db:"-"`
}

type Lane struct {
	ID         int `json:"id" db:"id"`
	HeatID     int `json:"heatId" db:"heat_id"`
	LaneNumber int `json:"laneNumber" db:"lane_number"`
	AthleteID  int `json:"athleteId" db:"athlete_id"`

	Athlete *Athlete `json:"athlete,omitempty" db:"-"`
}
