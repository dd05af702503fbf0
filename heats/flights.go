package heats

import (
	"context"
	"errors"
	"fmt"
)

// FlightGenerator splits FIELD athletes into flights in registration order.
// Lane numbers are the jump/throw order inside the flight: 1..k.
type FlightGenerator struct{}

func NewFlightGenerator() HeatGenerator {
	return &FlightGenerator{}
}

func (g *FlightGenerator) GetName() string {
	return "FLIGHTS"
}

func (g *FlightGenerator) GenerateHeats(ctx context.Context, params GenerateHeatsParams) ([]*GeneratedHeat, error) {
	if len(params.Athletes) == 0 {
		return nil, errors.New("cannot generate flights with zero athletes")
	}
	if params.HeatSize <= 0 {
		return nil, fmt.Errorf("flight size must be positive, got %d", params.HeatSize)
	}

	chunks := Partition(len(params.Athletes), params.HeatSize)
	flights := make([]*GeneratedHeat, 0, len(chunks))
	for i, bounds := range chunks {
		flight := &GeneratedHeat{HeatNumber: i + 1}
		for pos, athlete := range params.Athletes[bounds[0]:bounds[1]] {
			flight.Lanes = append(flight.Lanes, GeneratedLane{LaneNumber: pos + 1, Athlete: athlete})
		}
		flights = append(flights, flight)
	}
	return flights, nil
}
