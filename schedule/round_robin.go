package schedule

import (
	"context"
	"fmt"
	"sort"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate produces the league fixture list: every team plays every other
// team once, twice when the tournament is configured as a double round.
// Courts are assigned by cycling through the tournament's court numbers.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]Fixture, error) {
	teams := params.Teams
	tournament := params.Tournament

	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough teams (found %d, min 2 required)", len(teams))
	}
	courts := tournament.Courts
	if courts < 1 {
		courts = 1
	}

	fixtures := make([]Fixture, 0)
	order := 0
	firstLegCount := len(teams) * (len(teams) - 1) / 2

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			order++
			fixtures = append(fixtures, Fixture{
				Round:   1,
				Order:   order,
				TeamAID: teams[i].ID,
				TeamBID: teams[j].ID,
			})

			if tournament.DoubleRound {
				// Second leg with sides swapped, sequenced after the
				// whole first leg.
				fixtures = append(fixtures, Fixture{
					Round:   2,
					Order:   order + firstLegCount,
					TeamAID: teams[j].ID,
					TeamBID: teams[i].ID,
				})
			}
		}
	}

	sort.Slice(fixtures, func(i, j int) bool {
		return fixtures[i].Order < fixtures[j].Order
	})

	for i := range fixtures {
		fixtures[i].Court = (i % courts) + 1
	}

	return fixtures, nil
}
