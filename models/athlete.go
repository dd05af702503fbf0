package models

import "time"

type Athlete struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	BibNumber    string    `json:"bibNumber" db:"bib_number"`
	Gender       Gender    `json:"gender" db:"gender"`
	Category     string    `json:"category" db:"category"`
	School       *string   `json:"school,omitempty" db:"school"`
	PersonalBest *string   `json:"personalBest,omitempty" db:"personal_best"` // свободный текст, например "10.85s"
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
