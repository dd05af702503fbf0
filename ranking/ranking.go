// Package ranking converts raw per-athlete finish data into ranked standings.
package ranking

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/athletics-meet/models"
)

// tieTolerance - значения, отличающиеся меньше чем на это, считаются равными.
const tieTolerance = 0.0001

var (
	nonNumeric  = regexp.MustCompile(`[^0-9.\-]`)
	leadingMark = regexp.MustCompile(`^[+-]?\d*\.?\d+`)
)

// Entry is one athlete's raw result inside a heat.
type Entry struct {
	AthleteID   int
	BibNumber   string
	Status      models.ResultStatus
	ResultValue *string
	Notes       *string
}

type RankedEntry struct {
	Entry
	Rank *int
}

// ParseResultValue strips everything except digits, '.' and '-' and parses the rest.
// Unparsable values are treated as 0.
func ParseResultValue(value string) float64 {
	cleaned := nonNumeric.ReplaceAllString(value, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseLeadingMark extracts the leading number of a free-text mark such as
// "10.85s" or "6.12 m (wind +1.2)". ok is false when nothing numeric leads the text.
func ParseLeadingMark(mark string) (value float64, ok bool) {
	m := leadingMark.FindString(strings.TrimSpace(mark))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// LowerIsBetter reports whether smaller marks win for the given event kind.
func LowerIsBetter(kind models.EventKind) bool {
	return kind != models.EventKindField
}

// Rank orders FINISHED entries (TRACK ascending, FIELD descending) and assigns ranks.
// A tied entry shares its predecessor's rank; any other entry gets its 1-based
// position, so ranks after a tie skip ahead (1, 1, 3).
// Non-FINISHED entries follow in input order with nil rank and nil value.
func Rank(entries []Entry, kind models.EventKind) []RankedEntry {
	type scored struct {
		entry Entry
		value float64
	}

	finished := make([]scored, 0, len(entries))
	others := make([]Entry, 0)
	for _, e := range entries {
		if e.Status == models.ResultStatusFinished {
			v := 0.0
			if e.ResultValue != nil {
				v = ParseResultValue(*e.ResultValue)
			}
			finished = append(finished, scored{entry: e, value: v})
			continue
		}
		others = append(others, e)
	}

	lowerFirst := LowerIsBetter(kind)
	sort.SliceStable(finished, func(i, j int) bool {
		if lowerFirst {
			return finished[i].value < finished[j].value
		}
		return finished[i].value > finished[j].value
	})

	ranked := make([]RankedEntry, 0, len(entries))
	prevRank := 0
	for i, s := range finished {
		rank := i + 1
		if i > 0 && math.Abs(s.value-finished[i-1].value) < tieTolerance {
			rank = prevRank
		}
		prevRank = rank
		r := rank
		ranked = append(ranked, RankedEntry{Entry: s.entry, Rank: &r})
	}

	for _, e := range others {
		e.ResultValue = nil
		ranked = append(ranked, RankedEntry{Entry: e})
	}
	return ranked
}
