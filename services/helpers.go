package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Dosada05/athletics-meet/repositories"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

const dateLayout = "2006-01-02"

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного уровня.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrHeatNotFound),
		errors.Is(err, repositories.ErrResultHeatInvalid):
		return ErrHeatNotFound
	case errors.Is(err, repositories.ErrAthleteNotFound),
		errors.Is(err, repositories.ErrResultAthleteInvalid),
		errors.Is(err, repositories.ErrLaneAthleteInvalid):
		return ErrAthleteNotFound
	case errors.Is(err, repositories.ErrResultNotFound):
		return ErrResultNotFound
	case errors.Is(err, repositories.ErrHeatNumberConflict),
		errors.Is(err, repositories.ErrLaneConflict):
		return ErrHeatsAlreadyExist
	case errors.Is(err, repositories.ErrResultConflict):
		return ErrResultsAlreadyExist
	case errors.Is(err, repositories.ErrAthleteBibConflict):
		return ErrBibNumberTaken
	case errors.Is(err, repositories.ErrOperatorEmailConflict):
		return ErrOperatorEmailTaken
	case errors.Is(err, repositories.ErrEventInvalid),
		errors.Is(err, repositories.ErrAthleteCheckInvalid),
		errors.Is(err, repositories.ErrResultStatusInvalid):
		return validationError("%v", err)
	default:
		return err
	}
}
