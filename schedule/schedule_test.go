package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/athletics-meet/models"
)

func newEvent(id int, kind models.EventKind, gender models.Gender, category string) *models.Event {
	return &models.Event{
		ID:       id,
		Name:     string(kind) + " " + category,
		Kind:     kind,
		Gender:   gender,
		Category: category,
	}
}

type placement struct {
	EventID int
	Start   string
	End     string
}

func placements(day Day) []placement {
	out := make([]placement, 0, len(day.Slots))
	for _, s := range day.Slots {
		out = append(out, placement{s.Event.ID, FormatMinute(s.StartMinute), FormatMinute(s.EndMinute)})
	}
	return out
}

func conflictTypes(slot *models.ScheduledSlot) []models.ConflictType {
	out := []models.ConflictType{}
	for _, c := range slot.Conflicts {
		out = append(out, c.Type)
	}
	return out
}

var startDate = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

func TestStream_PushesPastLunch(t *testing.T) {
	// 30 + 28 = 58 минут на событие: шестое попадает на 12:50.
	s := NewStream(TrackDuration, 28)
	var starts []int
	for i := 0; i < 6; i++ {
		_, start, _ := s.Place()
		starts = append(starts, start)
	}
	assert.Equal(t, []int{480, 538, 596, 654, 712, 840}, starts)
}

func TestStream_RollsOverToNextDay(t *testing.T) {
	s := NewStream(FieldDuration, FieldGap)
	type slot struct{ day, start int }
	var got []slot
	for i := 0; i < 7; i++ {
		day, start, _ := s.Place()
		got = append(got, slot{day, start})
	}
	want := []slot{{0, 480}, {0, 550}, {0, 620}, {0, 690}, {0, 840}, {0, 910}, {1, 480}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(slot{})); diff != "" {
		t.Errorf("field placements mismatch (-want +got):\n%s", diff)
	}
}

func TestStream_HugeGapStaysOnGrid(t *testing.T) {
	s := NewStream(TrackDuration, math.MaxInt)
	type slot struct{ day, start, end int }
	var got []slot
	for i := 0; i < 3; i++ {
		day, start, end := s.Place()
		got = append(got, slot{day, start, end})
	}
	want := []slot{{0, 480, 510}, {1, 480, 510}, {2, 480, 510}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(slot{})); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ClampsDays(t *testing.T) {
	assert.Empty(t, Build(nil, Options{StartDate: startDate, Days: -3}))

	days := Build(nil, Options{StartDate: startDate, Days: 1 << 50})
	assert.Len(t, days, MaxDays)
}

func TestBuild_TrackEventAt1250MovesTo1400(t *testing.T) {
	var events []*models.Event
	for i := 1; i <= 6; i++ {
		events = append(events, newEvent(i, models.EventKindTrack, models.GenderMale, string(rune('A'+i))))
	}

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 28, AthleteRestMinutes: 60})
	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 6)

	last := days[0].Slots[5]
	assert.Equal(t, 6, last.Event.ID)
	assert.Equal(t, "14:00", FormatMinute(last.StartMinute))
	assert.Equal(t, "14:30", FormatMinute(last.EndMinute))
	for _, s := range days[0].Slots {
		assert.Empty(t, s.Conflicts, "event %d", s.Event.ID)
	}
}

func TestBuild_DropsEventsBeyondLastDay(t *testing.T) {
	var events []*models.Event
	for i := 1; i <= 7; i++ {
		events = append(events, newEvent(i, models.EventKindField, models.GenderFemale, string(rune('A'+i))))
	}

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 15, AthleteRestMinutes: 60})
	require.Len(t, days, 1)
	assert.Len(t, days[0].Slots, 6)
	for _, s := range days[0].Slots {
		assert.NotEqual(t, 7, s.Event.ID)
	}
}

func TestBuild_EmitsEveryDay(t *testing.T) {
	events := []*models.Event{newEvent(1, models.EventKindTrack, models.GenderMale, "U18")}

	days := Build(events, Options{StartDate: startDate, Days: 3, TrackGapMinutes: 15, AthleteRestMinutes: 60})
	require.Len(t, days, 3)
	assert.True(t, days[0].Date.Equal(startDate))
	assert.True(t, days[2].Date.Equal(startDate.AddDate(0, 0, 2)))
	assert.Len(t, days[0].Slots, 1)
	assert.Empty(t, days[1].Slots)
	assert.NotNil(t, days[1].Slots)
	assert.Empty(t, days[2].Slots)
}

func TestBuild_OrdersByStartThenTrackFirst(t *testing.T) {
	events := []*models.Event{
		newEvent(3, models.EventKindField, models.GenderMale, "U16"),
		newEvent(2, models.EventKindTrack, models.GenderFemale, "U18"),
		newEvent(1, models.EventKindTrack, models.GenderMale, "U20"),
	}

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 15, AthleteRestMinutes: 0})
	want := []placement{
		{1, "08:00", "08:30"},
		{3, "08:00", "09:00"},
		{2, "08:45", "09:15"},
	}
	if diff := cmp.Diff(want, placements(days[0])); diff != "" {
		t.Errorf("day order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_RestViolationReportedOnBothEvents(t *testing.T) {
	events := []*models.Event{
		newEvent(1, models.EventKindTrack, models.GenderMale, "U18"),
		newEvent(2, models.EventKindTrack, models.GenderMale, "U18"),
	}
	events[0].Name = "100m"
	events[1].Name = "200m"

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 20, AthleteRestMinutes: 60})
	slots := days[0].Slots
	require.Len(t, slots, 2)

	assert.Equal(t, []models.ConflictType{models.ConflictRestViolation}, conflictTypes(slots[0]))
	assert.Equal(t, []models.ConflictType{models.ConflictRestViolation}, conflictTypes(slots[1]))
	assert.Contains(t, slots[0].Conflicts[0].Description, "200m")
	assert.Contains(t, slots[0].Conflicts[0].Description, "20 min")
	assert.Contains(t, slots[1].Conflicts[0].Description, "100m")
	assert.NotNil(t, slots[0].Conflicts[0].AffectedAthleteIDs)
	assert.Empty(t, slots[0].Conflicts[0].AffectedAthleteIDs)
}

func TestBuild_AthleteConflictOnOverlap(t *testing.T) {
	events := []*models.Event{
		newEvent(1, models.EventKindTrack, models.GenderFemale, "U20"),
		newEvent(2, models.EventKindField, models.GenderFemale, "U20"),
	}

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 15, AthleteRestMinutes: 60})
	slots := days[0].Slots
	require.Len(t, slots, 2)

	for _, s := range slots {
		assert.Equal(t, []models.ConflictType{models.ConflictAthleteConflict}, conflictTypes(s))
		assert.Contains(t, s.Conflicts[0].Description, "30 min")
	}
}

func TestBuild_DifferentGroupsDoNotConflict(t *testing.T) {
	events := []*models.Event{
		newEvent(1, models.EventKindTrack, models.GenderFemale, "U20"),
		newEvent(2, models.EventKindField, models.GenderMale, "U20"),
		newEvent(3, models.EventKindField, models.GenderFemale, "U18"),
	}

	days := Build(events, Options{StartDate: startDate, Days: 1, TrackGapMinutes: 15, AthleteRestMinutes: 60})
	for _, s := range days[0].Slots {
		assert.Empty(t, s.Conflicts)
	}
}

func TestDetectConflicts_LunchOverlap(t *testing.T) {
	slot := &models.ScheduledSlot{
		Event:       newEvent(1, models.EventKindTrack, models.GenderMale, "U18"),
		StartMinute: 770,
		EndMinute:   800,
		Conflicts:   []models.Conflict{},
	}
	DetectConflicts([]*models.ScheduledSlot{slot}, 60)

	require.Len(t, slot.Conflicts, 1)
	assert.Equal(t, models.ConflictLunchViolation, slot.Conflicts[0].Type)
	assert.Contains(t, slot.Conflicts[0].Description, "12:50-13:20")
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "08:00", FormatMinute(480))
	assert.Equal(t, "13:05", FormatMinute(785))
	assert.Equal(t, "17:00", FormatMinute(1020))
}
