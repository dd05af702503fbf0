// Package schedule places events into a multi-day timetable and flags conflicts.
package schedule

import "fmt"

// Фиксированные параметры дня соревнований (минуты от полуночи).
const (
	DayStartMinute   = 8 * 60
	DayEndMinute     = 17 * 60
	LunchStartMinute = 13 * 60
	LunchEndMinute   = 14 * 60

	TrackDuration = 30
	FieldDuration = 60
	FieldGap      = 10

	// DayWindowMinutes - длина соревновательного дня; верхняя граница для пауз.
	DayWindowMinutes = DayEndMinute - DayStartMinute
	// MaxDays ограничивает окно расписания одним годом.
	MaxDays = 366
)

// Stream is a greedy cursor over the day grid. Track and field each run
// their own Stream, both starting at day 0, 08:00.
type Stream struct {
	duration int
	gap      int

	day    int
	cursor int
}

// NewStream clamps gap to [0, DayWindowMinutes] so the cursor never leaves the
// day grid by more than one window.
func NewStream(duration, gap int) *Stream {
	return &Stream{duration: duration, gap: clampMinutes(gap), cursor: DayStartMinute}
}

func clampMinutes(m int) int {
	return min(max(m, 0), DayWindowMinutes)
}

// Place returns the day index and start minute for the next event and advances
// the cursor by duration + gap.
func (s *Stream) Place() (day, start, end int) {
	s.settle()
	day, start, end = s.day, s.cursor, s.cursor+s.duration
	s.cursor = end + s.gap
	return day, start, end
}

// settle moves the cursor until the next event fits the day window and avoids lunch.
func (s *Stream) settle() {
	for {
		moved := false
		if s.cursor+s.duration > DayEndMinute {
			s.day++
			s.cursor = DayStartMinute
			moved = true
		}
		if s.cursor >= LunchStartMinute && s.cursor < LunchEndMinute {
			s.cursor = LunchEndMinute
			moved = true
		} else if s.cursor < LunchEndMinute && s.cursor+s.duration > LunchStartMinute {
			s.cursor = LunchEndMinute
			moved = true
		}
		if !moved {
			return
		}
	}
}

// FormatMinute renders minutes since midnight as "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
