package models

import "fmt"

// TieBreakCriterion is one ranking rule in a tournament's ordered tie-break
// list. Criteria are applied left to right; each one only refines ties left
// by the preceding ones.
type TieBreakCriterion string

const (
	CriterionMatchesWon TieBreakCriterion = "matches_won"
	CriterionSetsWon    TieBreakCriterion = "sets_won"
	CriterionPointsDiff TieBreakCriterion = "points_diff"
	CriterionHeadToHead TieBreakCriterion = "head_to_head"
)

func (c TieBreakCriterion) Valid() bool {
	switch c {
	case CriterionMatchesWon, CriterionSetsWon, CriterionPointsDiff, CriterionHeadToHead:
		return true
	}
	return false
}

// DefaultCriteria is the ranking order used when a tournament does not
// configure its own.
func DefaultCriteria() []TieBreakCriterion {
	return []TieBreakCriterion{
		CriterionMatchesWon,
		CriterionSetsWon,
		CriterionPointsDiff,
		CriterionHeadToHead,
	}
}

// ParseTieBreakCriteria validates a configured criteria list, rejecting
// unknown names and duplicates.
func ParseTieBreakCriteria(names []string) ([]TieBreakCriterion, error) {
	if len(names) == 0 {
		return DefaultCriteria(), nil
	}
	seen := make(map[TieBreakCriterion]bool, len(names))
	criteria := make([]TieBreakCriterion, 0, len(names))
	for _, name := range names {
		c := TieBreakCriterion(name)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown tie-break criterion %q", name)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate tie-break criterion %q", name)
		}
		seen[c] = true
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// StandingsRow is one team's line in a computed league table. Rows are
// derived on demand from completed matches and never persisted.
type StandingsRow struct {
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	Rank           int    `json:"rank"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	SetsWon        int    `json:"sets_won"`
	SetsLost       int    `json:"sets_lost"`
	PointsScored   int    `json:"points_scored"`
	PointsConceded int    `json:"points_conceded"`
}

func (r StandingsRow) PointsDiff() int {
	return r.PointsScored - r.PointsConceded
}
