package schedule

import (
	"fmt"

	"github.com/Dosada05/athletics-meet/models"
)

// DetectConflicts annotates the slots of one day. It never moves a slot.
func DetectConflicts(slots []*models.ScheduledSlot, restMinutes int) {
	for _, slot := range slots {
		if slot.StartMinute < LunchEndMinute && slot.EndMinute > LunchStartMinute {
			slot.Conflicts = append(slot.Conflicts, newConflict(models.ConflictLunchViolation,
				fmt.Sprintf("%s (%s-%s) overlaps the lunch break %s-%s",
					slot.Event.DisplayName(), FormatMinute(slot.StartMinute), FormatMinute(slot.EndMinute),
					FormatMinute(LunchStartMinute), FormatMinute(LunchEndMinute))))
		}

		for _, other := range slots {
			if other == slot || !sameGroup(slot.Event, other.Event) {
				continue
			}

			if slot.Overlaps(other) {
				overlap := min(slot.EndMinute, other.EndMinute) - max(slot.StartMinute, other.StartMinute)
				slot.Conflicts = append(slot.Conflicts, newConflict(models.ConflictAthleteConflict,
					fmt.Sprintf("Overlaps with %s by %d min (same gender and category)",
						other.Event.DisplayName(), overlap)))
			}

			if other.EndMinute <= slot.StartMinute {
				if gap := slot.StartMinute - other.EndMinute; gap < restMinutes {
					slot.Conflicts = append(slot.Conflicts, newConflict(models.ConflictRestViolation,
						fmt.Sprintf("Only %d min rest after %s (minimum %d min)",
							gap, other.Event.DisplayName(), restMinutes)))
				}
			}
			if other.StartMinute >= slot.EndMinute {
				if gap := other.StartMinute - slot.EndMinute; gap < restMinutes {
					slot.Conflicts = append(slot.Conflicts, newConflict(models.ConflictRestViolation,
						fmt.Sprintf("Only %d min rest before %s (minimum %d min)",
							gap, other.Event.DisplayName(), restMinutes)))
				}
			}
		}
	}
}

func sameGroup(a, b *models.Event) bool {
	return a.Gender == b.Gender && a.Category == b.Category
}

func newConflict(t models.ConflictType, description string) models.Conflict {
	return models.Conflict{Type: t, Description: description, AffectedAthleteIDs: []int{}}
}
