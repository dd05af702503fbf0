package heats

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/ranking"
)

// Shuffler is the randomness source of the RANDOM strategy. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultShuffler uses the package-level math/rand/v2 source.
func DefaultShuffler() Shuffler { return globalShuffler{} }

// PersonalBestValue returns the seeding magnitude of an athlete.
// A missing or unparsable personal best seeds as +Inf (last).
func PersonalBestValue(a *models.Athlete) float64 {
	if a == nil || a.PersonalBest == nil {
		return math.Inf(1)
	}
	v, ok := ranking.ParseLeadingMark(*a.PersonalBest)
	if !ok {
		return math.Inf(1)
	}
	return v
}

// SeedAthletes returns a new slice ordered by the given strategy; the input is not modified.
func SeedAthletes(athletes []*models.Athlete, strategy SeedingStrategy, shuffler Shuffler) ([]*models.Athlete, error) {
	seeded := make([]*models.Athlete, len(athletes))
	copy(seeded, athletes)

	switch strategy {
	case SeedingPBAsc:
		sort.SliceStable(seeded, func(i, j int) bool {
			return PersonalBestValue(seeded[i]) < PersonalBestValue(seeded[j])
		})
	case SeedingRandom:
		if shuffler == nil {
			shuffler = DefaultShuffler()
		}
		shuffler.Shuffle(len(seeded), func(i, j int) {
			seeded[i], seeded[j] = seeded[j], seeded[i]
		})
	default:
		return nil, fmt.Errorf("unsupported seeding strategy '%s'", strategy)
	}
	return seeded, nil
}
