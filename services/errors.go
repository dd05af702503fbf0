package services

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок. Handlers сопоставляют их с HTTP статусами.
var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrValidationFailed     = errors.New("validation failed")
	ErrConflict             = errors.New("conflict with existing data")
	ErrBusinessRule         = errors.New("business rule violation")
	ErrInvalidState         = errors.New("invalid state")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

var (
	ErrEventNotFound   = fmt.Errorf("%w: event not found", ErrNotFound)
	ErrHeatNotFound    = fmt.Errorf("%w: heat not found", ErrNotFound)
	ErrAthleteNotFound = fmt.Errorf("%w: athlete not found", ErrNotFound)
	ErrHeatNotInEvent  = fmt.Errorf("%w: heat does not belong to this event", ErrNotFound)
	ErrResultNotFound  = fmt.Errorf("%w: no submitted result to correct", ErrNotFound)

	ErrHeatsAlreadyExist   = fmt.Errorf("%w: heats already exist for this event", ErrConflict)
	ErrResultsAlreadyExist = fmt.Errorf("%w: results already exist for this heat", ErrConflict)
	ErrBibNumberTaken      = fmt.Errorf("%w: bib number is already in use", ErrConflict)
	ErrEventLocked         = fmt.Errorf("%w: event already has heats and can no longer be changed", ErrConflict)
	ErrOperatorEmailTaken  = fmt.Errorf("%w: operator email is already in use", ErrConflict)

	ErrFieldEventHasNoHeats    = fmt.Errorf("%w: FIELD events do not use heats", ErrBusinessRule)
	ErrTrackEventHasNoFlights  = fmt.Errorf("%w: TRACK events do not use flights", ErrBusinessRule)
	ErrNoEligibleAthletes      = fmt.Errorf("%w: no eligible athletes for this event", ErrBusinessRule)
	ErrRuleKeyKindMismatch     = fmt.Errorf("%w: rule key does not apply to this event type", ErrBusinessRule)
	ErrHeatSizeNotConfigured   = fmt.Errorf("%w: rules.maxAthletesPerHeat must be a positive integer", ErrInvalidState)
	ErrFlightSizeNotConfigured = fmt.Errorf("%w: rules.maxAthletesPerFlight must be a positive integer", ErrInvalidState)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthenticationFailed)
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
