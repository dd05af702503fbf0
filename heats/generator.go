package heats

import (
	"context"

	"github.com/Dosada05/athletics-meet/models"
)

type SeedingStrategy string

const (
	SeedingPBAsc  SeedingStrategy = "PB_ASC"
	SeedingRandom SeedingStrategy = "RANDOM"
)

type LaneAssignment string

const LaneAssignmentStandard LaneAssignment = "STANDARD"

type GenerateHeatsParams struct {
	Event    *models.Event
	Athletes []*models.Athlete
	Seeding  SeedingStrategy
	HeatSize int
}

// GeneratedHeat - заготовка забега до сохранения в БД.
type GeneratedHeat struct {
	HeatNumber int
	Lanes      []GeneratedLane
}

type GeneratedLane struct {
	LaneNumber int
	Athlete    *models.Athlete
}

type HeatGenerator interface {
	GenerateHeats(ctx context.Context, params GenerateHeatsParams) ([]*GeneratedHeat, error)

	GetName() string
}

// Partition splits n items into consecutive chunks of at most size items and
// returns the [start, end) bounds of each chunk.
func Partition(n, size int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	chunks := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}
