package heats

import (
	"context"
	"errors"
	"fmt"
)

// lanePreference - порядок дорожек: лучший посеянный получает 4-ю дорожку.
var lanePreference = [...]int{4, 5, 3, 6, 2, 7, 1, 8}

// LaneForPosition returns the lane of the athlete at 0-based seeded position
// within a heat. Positions beyond the preference list get lanes 9, 10, ...
func LaneForPosition(pos int) int {
	if pos < len(lanePreference) {
		return lanePreference[pos]
	}
	return pos + 1
}

// StandardHeatGenerator seeds TRACK athletes and fills heats with the
// centre-out lane preference.
type StandardHeatGenerator struct {
	shuffler Shuffler
}

func NewStandardHeatGenerator(shuffler Shuffler) HeatGenerator {
	if shuffler == nil {
		shuffler = DefaultShuffler()
	}
	return &StandardHeatGenerator{shuffler: shuffler}
}

func (g *StandardHeatGenerator) GetName() string {
	return string(LaneAssignmentStandard)
}

func (g *StandardHeatGenerator) GenerateHeats(ctx context.Context, params GenerateHeatsParams) ([]*GeneratedHeat, error) {
	if len(params.Athletes) == 0 {
		return nil, errors.New("cannot generate heats with zero athletes")
	}
	if params.HeatSize <= 0 {
		return nil, fmt.Errorf("heat size must be positive, got %d", params.HeatSize)
	}

	seeded, err := SeedAthletes(params.Athletes, params.Seeding, g.shuffler)
	if err != nil {
		return nil, err
	}

	chunks := Partition(len(seeded), params.HeatSize)
	generated := make([]*GeneratedHeat, 0, len(chunks))
	for i, bounds := range chunks {
		chunk := seeded[bounds[0]:bounds[1]]
		heat := &GeneratedHeat{
			HeatNumber: i + 1,
			Lanes:      make([]GeneratedLane, 0, len(chunk)),
		}
		for pos, athlete := range chunk {
			heat.Lanes = append(heat.Lanes, GeneratedLane{
				LaneNumber: LaneForPosition(pos),
				Athlete:    athlete,
			})
		}
		generated = append(generated, heat)
	}
	return generated, nil
}
