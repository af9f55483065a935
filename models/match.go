package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusCompleted:
		return true
	}
	return false
}

// SetScore is the final point tally of one set. Side A/B correspond to the
// match's TeamAID/TeamBID; the order carries no ranking meaning.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// SetWins tallies how many sets each side has won. A drawn set counts toward
// neither side.
func SetWins(sets []SetScore) (sideA, sideB int) {
	for _, set := range sets {
		switch {
		case set.A > set.B:
			sideA++
		case set.B > set.A:
			sideB++
		}
	}
	return sideA, sideB
}

// Match is a contest between two teams within one tournament. A completed
// match always has a winner that is one of its two participants and a
// completion timestamp; a scheduled or live match has neither. Status only
// ever advances scheduled -> live -> completed.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	TeamAID      int         `json:"team_a_id" db:"team_a_id"`
	TeamBID      int         `json:"team_b_id" db:"team_b_id"`
	Sets         []SetScore  `json:"sets" db:"sets"`
	BestOf       int         `json:"best_of" db:"best_of"`
	TargetPoints int         `json:"target_points" db:"target_points"`
	Court        int         `json:"court" db:"court"`
	Round        *int        `json:"round,omitempty" db:"round"`
	MatchTime    time.Time   `json:"match_time" db:"match_time"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	TeamA *Team `json:"team_a,omitempty" db:"-"`
	TeamB *Team `json:"team_b,omitempty" db:"-"`
}

func (m *Match) HasParticipant(teamID int) bool {
	return m.TeamAID == teamID || m.TeamBID == teamID
}

// Opponent returns the other side of the match, or 0 if teamID is not a
// participant.
func (m *Match) Opponent(teamID int) int {
	switch teamID {
	case m.TeamAID:
		return m.TeamBID
	case m.TeamBID:
		return m.TeamAID
	}
	return 0
}
