package schedule

import (
	"context"
	"testing"

	"github.com/courtside/badminton-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := range teams {
		teams[i] = &models.Team{ID: i + 1, TournamentID: 1}
	}
	return teams
}

type pairing struct{ a, b int }

func normalizedPair(f Fixture) pairing {
	if f.TeamAID < f.TeamBID {
		return pairing{f.TeamAID, f.TeamBID}
	}
	return pairing{f.TeamBID, f.TeamAID}
}

func TestRoundRobinEveryPairMeetsOnce(t *testing.T) {
	gen := NewRoundRobinGenerator()
	tournament := &models.Tournament{ID: 1, Courts: 1}

	for _, n := range []int{2, 3, 4, 5, 8} {
		fixtures, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: tournament,
			Teams:      genTeams(n),
		})
		require.NoError(t, err, "n=%d", n)

		want := n * (n - 1) / 2
		require.Len(t, fixtures, want, "n=%d", n)

		seen := make(map[pairing]bool)
		for _, f := range fixtures {
			assert.NotEqual(t, f.TeamAID, f.TeamBID)
			p := normalizedPair(f)
			assert.False(t, seen[p], "pair %v scheduled twice", p)
			seen[p] = true
		}
	}
}

func TestRoundRobinDoubleRound(t *testing.T) {
	gen := NewRoundRobinGenerator()
	tournament := &models.Tournament{ID: 1, Courts: 1, DoubleRound: true}

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Tournament: tournament,
		Teams:      genTeams(4),
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 12)

	meetings := make(map[pairing]int)
	swapped := 0
	for _, f := range fixtures {
		meetings[normalizedPair(f)]++
		if f.Round == 2 {
			swapped++
			assert.Greater(t, f.TeamAID, f.TeamBID, "second leg swaps home side")
		}
	}
	assert.Equal(t, 6, swapped)
	for p, count := range meetings {
		assert.Equal(t, 2, count, "pair %v", p)
	}

	// The whole first leg plays before any second-leg rematch.
	for i := 1; i < len(fixtures); i++ {
		assert.LessOrEqual(t, fixtures[i-1].Round, fixtures[i].Round)
		assert.Less(t, fixtures[i-1].Order, fixtures[i].Order)
	}
}

func TestRoundRobinCourtAssignmentCycles(t *testing.T) {
	gen := NewRoundRobinGenerator()
	tournament := &models.Tournament{ID: 1, Courts: 3}

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Tournament: tournament,
		Teams:      genTeams(5),
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 10)

	for i, f := range fixtures {
		assert.Equal(t, (i%3)+1, f.Court)
	}
}

func TestRoundRobinRejectsTooFewTeams(t *testing.T) {
	gen := NewRoundRobinGenerator()
	tournament := &models.Tournament{ID: 1, Courts: 1}

	for _, n := range []int{0, 1} {
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: tournament,
			Teams:      genTeams(n),
		})
		assert.Error(t, err, "n=%d", n)
	}
}
