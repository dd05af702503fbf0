package models

import "time"

type ResultStatus string

const (
	ResultStatusFinished ResultStatus = "FINISHED"
	ResultStatusDNS      ResultStatus = "DNS"
	ResultStatusDNF      ResultStatus = "DNF"
	ResultStatusDQ       ResultStatus = "DQ"
)

func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultStatusFinished, ResultStatusDNS, ResultStatusDNF, ResultStatusDQ:
		return true
	}
	return false
}

type Result struct {
	ID          int          `json:"id" db:"id"`
	HeatID      int          `json:"heatId" db:"heat_id"`
	AthleteID   int          `json:"athleteId" db:"athlete_id"`
	Status      ResultStatus `json:"status" db:"status"`
	ResultValue *string      `json:"resultValue" db:"result_value"` // только для FINISHED
	Rank        *int         `json:"rank" db:"rank"`                // только для FINISHED
	Notes       *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	Athlete *Athlete `json:"athlete,omitempty" db:"-"`
}
