// Package standings computes a tournament's league table from its completed
// matches. The computation is pure: it reads only its inputs, produces no
// side effects and is deterministic regardless of input ordering.
package standings

import (
	"sort"

	"github.com/courtside/badminton-league/models"
)

// entry carries a team's aggregated metrics plus the head-to-head record
// needed by the tie-break pass.
type entry struct {
	row  models.StandingsRow
	name string
	// headToHead holds net direct wins per opposing team id. Repeat
	// meetings accumulate; a net zero contributes no signal.
	headToHead map[int]int
}

// Compute produces a fully ordered league table for the given teams from
// their completed matches, applying criteria left to right as successive
// tie-breakers. Every team appears exactly once, zero-played teams included
// with all-zero rows. Matches that are not completed, or that reference a
// team id outside the given set, are skipped rather than aborting the whole
// table.
func Compute(teams []*models.Team, completedMatches []*models.Match, criteria []models.TieBreakCriterion) []models.StandingsRow {
	if len(criteria) == 0 {
		criteria = models.DefaultCriteria()
	}

	entries := make(map[int]*entry, len(teams))
	for _, team := range teams {
		entries[team.ID] = &entry{
			row:        models.StandingsRow{TeamID: team.ID, TeamName: team.Name},
			name:       team.Name,
			headToHead: make(map[int]int),
		}
	}

	for _, match := range completedMatches {
		accumulate(entries, match)
	}

	ordered := make([]*entry, 0, len(entries))
	for _, team := range teams {
		ordered = append(ordered, entries[team.ID])
	}

	groups := [][]*entry{ordered}
	for _, criterion := range criteria {
		groups = refine(groups, criterion)
	}
	groups = refineByName(groups)

	rows := make([]models.StandingsRow, 0, len(teams))
	rank := 0
	for _, group := range groups {
		for _, e := range group {
			rank++
			e.row.Rank = rank
			rows = append(rows, e.row)
		}
	}
	return rows
}

func accumulate(entries map[int]*entry, match *models.Match) {
	if match.Status != models.MatchStatusCompleted || match.WinnerTeamID == nil {
		return
	}
	entryA, okA := entries[match.TeamAID]
	entryB, okB := entries[match.TeamBID]
	if !okA || !okB {
		// Dangling team reference; keep the rest of the table usable.
		return
	}

	entryA.row.Played++
	entryB.row.Played++

	setsA, setsB := models.SetWins(match.Sets)
	entryA.row.SetsWon += setsA
	entryA.row.SetsLost += setsB
	entryB.row.SetsWon += setsB
	entryB.row.SetsLost += setsA

	for _, set := range match.Sets {
		entryA.row.PointsScored += set.A
		entryA.row.PointsConceded += set.B
		entryB.row.PointsScored += set.B
		entryB.row.PointsConceded += set.A
	}

	if *match.WinnerTeamID == match.TeamAID {
		entryA.row.Wins++
		entryB.row.Losses++
		entryA.headToHead[match.TeamBID]++
		entryB.headToHead[match.TeamAID]--
	} else {
		entryB.row.Wins++
		entryA.row.Losses++
		entryB.headToHead[match.TeamAID]++
		entryA.headToHead[match.TeamBID]--
	}
}

// refine splits each tie group by one criterion. Groups of one are already
// fully ordered and pass through untouched.
func refine(groups [][]*entry, criterion models.TieBreakCriterion) [][]*entry {
	refined := make([][]*entry, 0, len(groups))
	for _, group := range groups {
		if len(group) < 2 {
			refined = append(refined, group)
			continue
		}
		if criterion == models.CriterionHeadToHead {
			refined = append(refined, refineHeadToHead(group)...)
			continue
		}
		refined = append(refined, refineByMetric(group, metricGetter(criterion))...)
	}
	return refined
}

func metricGetter(criterion models.TieBreakCriterion) func(*entry) int {
	switch criterion {
	case models.CriterionMatchesWon:
		return func(e *entry) int { return e.row.Wins }
	case models.CriterionSetsWon:
		return func(e *entry) int { return e.row.SetsWon }
	case models.CriterionPointsDiff:
		return func(e *entry) int { return e.row.PointsDiff() }
	}
	return func(*entry) int { return 0 }
}

// refineByMetric sorts a tie group into descending buckets of one metric.
func refineByMetric(group []*entry, metric func(*entry) int) [][]*entry {
	buckets := make(map[int][]*entry)
	for _, e := range group {
		value := metric(e)
		buckets[value] = append(buckets[value], e)
	}

	values := make([]int, 0, len(buckets))
	for value := range buckets {
		values = append(values, value)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	refined := make([][]*entry, 0, len(values))
	for _, value := range values {
		refined = append(refined, buckets[value])
	}
	return refined
}

// refineHeadToHead applies only when exactly two teams remain tied and they
// have met at least once with a decisive aggregate. Larger ties, or pairs
// that never played, fall through unchanged to the next criterion.
func refineHeadToHead(group []*entry) [][]*entry {
	if len(group) != 2 {
		return [][]*entry{group}
	}
	first, second := group[0], group[1]
	net, met := first.headToHead[second.row.TeamID]
	if !met || net == 0 {
		return [][]*entry{group}
	}
	if net > 0 {
		return [][]*entry{{first}, {second}}
	}
	return [][]*entry{{second}, {first}}
}

// refineByName is the final deterministic fallback: ascending team name,
// then team id.
func refineByName(groups [][]*entry) [][]*entry {
	refined := make([][]*entry, 0, len(groups))
	for _, group := range groups {
		if len(group) < 2 {
			refined = append(refined, group)
			continue
		}
		sorted := make([]*entry, len(group))
		copy(sorted, group)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].name != sorted[j].name {
				return sorted[i].name < sorted[j].name
			}
			return sorted[i].row.TeamID < sorted[j].row.TeamID
		})
		for _, e := range sorted {
			refined = append(refined, []*entry{e})
		}
	}
	return refined
}
