package schedule

import (
	"context"

	"github.com/courtside/badminton-league/models"
)

// Fixture is one generated league pairing before it is persisted as a match.
type Fixture struct {
	Round   int
	Order   int
	TeamAID int
	TeamBID int
	Court   int
}

type GenerateParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

type Generator interface {
	GetName() string
	Generate(ctx context.Context, params GenerateParams) ([]Fixture, error)
}
