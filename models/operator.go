package models

import "time"

type OperatorRole string

const (
	RoleAdmin     OperatorRole = "admin"
	RoleOrganizer OperatorRole = "organizer"
)

// Operator - пользователь, управляющий соревнованиями (секретарь, судья).
type Operator struct {
	ID           int          `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Role         OperatorRole `json:"role" db:"role"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
