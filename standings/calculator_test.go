package standings

import (
	"testing"

	"github.com/courtside/badminton-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team(id int, name string) *models.Team {
	return &models.Team{ID: id, Name: name}
}

func completed(teamA, teamB, winner int, sets ...models.SetScore) *models.Match {
	return &models.Match{
		TeamAID:      teamA,
		TeamBID:      teamB,
		Sets:         sets,
		Status:       models.MatchStatusCompleted,
		WinnerTeamID: &winner,
	}
}

func teamOrder(rows []models.StandingsRow) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.TeamID
	}
	return ids
}

func TestComputeEmptyInputs(t *testing.T) {
	rows := Compute(nil, nil, nil)
	assert.Empty(t, rows)
}

func TestComputeIncludesZeroPlayedTeams(t *testing.T) {
	teams := []*models.Team{team(1, "Charlie"), team(2, "Alpha"), team(3, "Bravo")}

	rows := Compute(teams, nil, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{2, 3, 1}, teamOrder(rows), "all-zero rows fall back to name order")
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Wins)
		assert.Zero(t, row.SetsWon)
		assert.Zero(t, row.PointsScored)
	}
}

func TestComputeOrdersByWins(t *testing.T) {
	teams := []*models.Team{team(1, "Alpha"), team(2, "Bravo"), team(3, "Charlie")}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 19}),
		completed(1, 3, 1, models.SetScore{A: 21, B: 10}, models.SetScore{A: 21, B: 12}),
		completed(2, 3, 2, models.SetScore{A: 21, B: 18}, models.SetScore{A: 21, B: 16}),
	}

	rows := Compute(teams, matches, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{1, 2, 3}, teamOrder(rows))
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, 1, rows[1].Wins)
	assert.Equal(t, 0, rows[2].Wins)
	for _, row := range rows {
		assert.Equal(t, 2, row.Played)
		assert.Equal(t, row.Played, row.Wins+row.Losses)
	}
}

func TestComputeAggregatesSetsAndPoints(t *testing.T) {
	teams := []*models.Team{team(1, "Alpha"), team(2, "Bravo")}
	matches := []*models.Match{
		completed(1, 2, 1,
			models.SetScore{A: 21, B: 15},
			models.SetScore{A: 18, B: 21},
			models.SetScore{A: 21, B: 19}),
	}

	rows := Compute(teams, matches, nil)

	require.Len(t, rows, 2)
	winner, loser := rows[0], rows[1]
	assert.Equal(t, 1, winner.TeamID)
	assert.Equal(t, 2, winner.SetsWon)
	assert.Equal(t, 1, winner.SetsLost)
	assert.Equal(t, 60, winner.PointsScored)
	assert.Equal(t, 55, winner.PointsConceded)
	assert.Equal(t, 1, loser.SetsWon)
	assert.Equal(t, 2, loser.SetsLost)
	assert.Equal(t, 55, loser.PointsScored)
	assert.Equal(t, 60, loser.PointsConceded)
}

func TestComputeSetsWonTieBreak(t *testing.T) {
	teams := []*models.Team{
		team(1, "Alpha"), team(2, "Bravo"), team(3, "Casi"), team(4, "Delta"),
	}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 19}),
		completed(3, 4, 3, models.SetScore{A: 21, B: 10}, models.SetScore{A: 21, B: 12}),
		completed(1, 3, 1, models.SetScore{A: 21, B: 18}, models.SetScore{A: 19, B: 21}, models.SetScore{A: 21, B: 19}),
		completed(2, 4, 2, models.SetScore{A: 21, B: 5}, models.SetScore{A: 21, B: 7}),
		completed(1, 4, 4, models.SetScore{A: 19, B: 21}, models.SetScore{A: 18, B: 21}),
		completed(2, 3, 3, models.SetScore{A: 15, B: 21}, models.SetScore{A: 21, B: 23}),
	}
	criteria := []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionSetsWon}

	rows := Compute(teams, matches, criteria)

	require.Len(t, rows, 4)
	// Casi and Alpha are both 2-1; Casi holds 5 set wins against Alpha's 4.
	// Bravo and Delta are 1-2 with equal set wins, leaving name order.
	assert.Equal(t, []int{3, 1, 2, 4}, teamOrder(rows))
	assert.Equal(t, 5, rows[0].SetsWon)
	assert.Equal(t, 4, rows[1].SetsWon)
}

func TestComputePointsDiffTieBreak(t *testing.T) {
	teams := []*models.Team{
		team(1, "Alpha"), team(2, "Bravo"), team(3, "Charlie"), team(4, "Delta"),
	}
	matches := []*models.Match{
		completed(1, 3, 1, models.SetScore{A: 21, B: 10}, models.SetScore{A: 21, B: 10}),
		completed(2, 4, 2, models.SetScore{A: 21, B: 18}, models.SetScore{A: 21, B: 18}),
	}
	criteria := []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionPointsDiff}

	rows := Compute(teams, matches, criteria)

	require.Len(t, rows, 4)
	assert.Equal(t, []int{1, 2, 4, 3}, teamOrder(rows))
	assert.Equal(t, 22, rows[0].PointsDiff())
	assert.Equal(t, 6, rows[1].PointsDiff())
	assert.Equal(t, -6, rows[2].PointsDiff())
	assert.Equal(t, -22, rows[3].PointsDiff())
}

func TestComputeHeadToHeadBreaksPair(t *testing.T) {
	teams := []*models.Team{
		team(1, "Alpha"), team(2, "Zebra"), team(3, "Apple"), team(4, "Delta"),
	}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(3, 4, 3, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(2, 3, 2, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(1, 4, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
	}
	criteria := []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionHeadToHead}

	rows := Compute(teams, matches, criteria)

	require.Len(t, rows, 4)
	// Zebra and Apple are both 1-1 but Zebra won their direct meeting, so
	// the head-to-head verdict overrides the alphabetical fallback.
	assert.Equal(t, []int{1, 2, 3, 4}, teamOrder(rows))
}

func TestComputeHeadToHeadSkipsLargerTies(t *testing.T) {
	teams := []*models.Team{
		team(1, "Charlie"), team(2, "Alpha"), team(3, "Bravo"),
	}
	// A three-way cycle: everyone is 1-1 and head-to-head carries no
	// signal for groups larger than two, so name order decides.
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(2, 3, 2, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(3, 1, 3, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
	}
	criteria := []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionHeadToHead}

	rows := Compute(teams, matches, criteria)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{2, 3, 1}, teamOrder(rows))
}

func TestComputeHeadToHeadNoSignalWhenSplit(t *testing.T) {
	teams := []*models.Team{team(1, "Bravo"), team(2, "Alpha")}
	// Two meetings, one win each: the aggregate is even, so the pair
	// falls through to the name fallback.
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		completed(2, 1, 2, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
	}
	criteria := []models.TieBreakCriterion{models.CriterionMatchesWon, models.CriterionHeadToHead}

	rows := Compute(teams, matches, criteria)

	require.Len(t, rows, 2)
	assert.Equal(t, []int{2, 1}, teamOrder(rows))
}

func TestComputeDeterministicUnderReordering(t *testing.T) {
	teams := []*models.Team{
		team(1, "Alpha"), team(2, "Bravo"), team(3, "Casi"), team(4, "Delta"),
	}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 19}),
		completed(3, 4, 3, models.SetScore{A: 21, B: 10}, models.SetScore{A: 21, B: 12}),
		completed(1, 3, 1, models.SetScore{A: 21, B: 18}, models.SetScore{A: 19, B: 21}, models.SetScore{A: 21, B: 19}),
		completed(2, 4, 2, models.SetScore{A: 21, B: 5}, models.SetScore{A: 21, B: 7}),
		completed(1, 4, 4, models.SetScore{A: 19, B: 21}, models.SetScore{A: 18, B: 21}),
		completed(2, 3, 3, models.SetScore{A: 15, B: 21}, models.SetScore{A: 21, B: 23}),
	}

	expected := Compute(teams, matches, nil)

	shuffledTeams := []*models.Team{teams[2], teams[0], teams[3], teams[1]}
	shuffledMatches := []*models.Match{matches[5], matches[1], matches[3], matches[0], matches[4], matches[2]}

	got := Compute(shuffledTeams, shuffledMatches, nil)

	assert.Equal(t, expected, got)
}

func TestComputeSkipsUnusableMatches(t *testing.T) {
	teams := []*models.Team{team(1, "Alpha"), team(2, "Bravo")}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		// References a team outside the tournament.
		completed(1, 99, 1, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
		// Still live, no result yet.
		{
			TeamAID: 1, TeamBID: 2,
			Sets:   []models.SetScore{{A: 21, B: 15}},
			Status: models.MatchStatusLive,
		},
		// Completed but without a recorded winner.
		{
			TeamAID: 2, TeamBID: 1,
			Sets:   []models.SetScore{{A: 21, B: 15}},
			Status: models.MatchStatusCompleted,
		},
	}

	rows := Compute(teams, matches, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Played)
	assert.Equal(t, 1, rows[1].Played)
	assert.Equal(t, 1, rows[0].Wins)
}

func TestComputeDrawnSetCountsForNeitherSide(t *testing.T) {
	teams := []*models.Team{team(1, "Alpha"), team(2, "Bravo")}
	matches := []*models.Match{
		completed(1, 2, 1, models.SetScore{A: 21, B: 18}, models.SetScore{A: 20, B: 20}),
	}

	rows := Compute(teams, matches, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].SetsWon)
	assert.Equal(t, 0, rows[0].SetsLost)
	assert.Equal(t, 0, rows[1].SetsWon)
	assert.Equal(t, 1, rows[1].SetsLost)
	assert.Equal(t, 41, rows[0].PointsScored)
	assert.Equal(t, 38, rows[0].PointsConceded)
}

func TestComputeEveryTeamAppearsExactlyOnce(t *testing.T) {
	teams := []*models.Team{
		team(1, "Alpha"), team(2, "Bravo"), team(3, "Charlie"), team(4, "Delta"), team(5, "Echo"),
	}
	matches := []*models.Match{
		completed(1, 2, 2, models.SetScore{A: 15, B: 21}, models.SetScore{A: 15, B: 21}),
		completed(3, 4, 3, models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15}),
	}

	rows := Compute(teams, matches, nil)

	require.Len(t, rows, 5)
	seen := make(map[int]bool)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.False(t, seen[row.TeamID], "team %d appears twice", row.TeamID)
		seen[row.TeamID] = true
	}
}
