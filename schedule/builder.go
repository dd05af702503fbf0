package schedule

import (
	"sort"
	"time"

	"github.com/Dosada05/athletics-meet/models"
)

type Options struct {
	StartDate          time.Time
	Days               int
	TrackGapMinutes    int
	AthleteRestMinutes int
}

type Day struct {
	Date  time.Time
	Slots []*models.ScheduledSlot
}

// Build places every event (ignoring its stored date) into Days calendar days.
// Days is clamped to [0, MaxDays]. Events whose computed day index falls
// outside the window are dropped.
func Build(events []*models.Event, opts Options) []Day {
	opts.Days = min(max(opts.Days, 0), MaxDays)
	opts.AthleteRestMinutes = clampMinutes(opts.AthleteRestMinutes)

	track := NewStream(TrackDuration, opts.TrackGapMinutes)
	field := NewStream(FieldDuration, FieldGap)

	ordered := make([]*models.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	days := make([]Day, opts.Days)
	for i := range days {
		days[i].Date = opts.StartDate.AddDate(0, 0, i)
		days[i].Slots = []*models.ScheduledSlot{}
	}

	for _, ev := range ordered {
		stream := track
		if ev.Kind == models.EventKindField {
			stream = field
		}
		day, start, end := stream.Place()
		if day >= opts.Days {
			continue
		}
		days[day].Slots = append(days[day].Slots, &models.ScheduledSlot{
			Event:       ev,
			DayIndex:    day,
			StartMinute: start,
			EndMinute:   end,
			Conflicts:   []models.Conflict{},
		})
	}

	for i := range days {
		slots := days[i].Slots
		sort.SliceStable(slots, func(a, b int) bool {
			if slots[a].StartMinute != slots[b].StartMinute {
				return slots[a].StartMinute < slots[b].StartMinute
			}
			if slots[a].Event.Kind != slots[b].Event.Kind {
				return slots[a].Event.Kind == models.EventKindTrack
			}
			return slots[a].Event.ID < slots[b].Event.ID
		})
		DetectConflicts(slots, opts.AthleteRestMinutes)
	}
	return days
}
