package services

import (
	"context"
	"testing"

	"github.com/courtside/badminton-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStandings(t *testing.T) {
	tournament := testTournament()
	tournament.Criteria = []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionPointsDiff}

	teams := []*models.Team{
		{ID: 1, TournamentID: 1, Name: "Smash Bros"},
		{ID: 2, TournamentID: 1, Name: "Net Gains"},
		{ID: 3, TournamentID: 1, Name: "Drop Shots"},
	}
	winner := 1
	matches := []*models.Match{
		{
			ID: 100, TournamentID: 1, TeamAID: 1, TeamBID: 2,
			Sets:         []models.SetScore{{A: 21, B: 15}, {A: 21, B: 17}},
			Status:       models.MatchStatusCompleted,
			WinnerTeamID: &winner,
		},
		// Still scheduled, must not count.
		{
			ID: 101, TournamentID: 1, TeamAID: 2, TeamBID: 3,
			Status: models.MatchStatusScheduled,
		},
	}

	service := NewStandingsService(
		newFakeTournamentRepo(tournament),
		newFakeTeamRepo(teams...),
		newFakeMatchRepo(matches...),
	)

	rows, err := service.GetStandings(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].TeamID)
	assert.Equal(t, 1, rows[0].Wins)
	assert.Equal(t, 1, rows[0].Rank)
	// Unplayed teams still appear, ordered by name.
	assert.Equal(t, 3, rows[1].TeamID)
	assert.Equal(t, 2, rows[2].TeamID)
	assert.Zero(t, rows[1].Played)

	_, err = service.GetStandings(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
