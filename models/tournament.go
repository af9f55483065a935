package models

import "time"

type TournamentStatus string

const (
	TournamentStatusDraft        TournamentStatus = "draft"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusDraft, TournamentStatusRegistration,
		TournamentStatusActive, TournamentStatusCompleted, TournamentStatusCanceled:
		return true
	}
	return false
}

// Tournament owns the player pool, teams, matches and ranking configuration.
// Once Locked is set the pool and roster stop changing and match scheduling
// becomes possible.
type Tournament struct {
	ID            int                 `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	Description   *string             `json:"description,omitempty" db:"description"`
	OrganizerID   int                 `json:"organizer_id" db:"organizer_id"`
	Status        TournamentStatus    `json:"status" db:"status"`
	Locked        bool                `json:"locked" db:"locked"`
	StartDate     time.Time           `json:"start_date" db:"start_date"`
	Location      *string             `json:"location,omitempty" db:"location"`
	Courts        int                 `json:"courts" db:"courts"`
	BestOf        int                 `json:"best_of" db:"best_of"`
	TargetPoints  int                 `json:"target_points" db:"target_points"`
	PointsPerWin  int                 `json:"points_per_win" db:"points_per_win"`
	DoubleRound   bool                `json:"double_round" db:"double_round"`
	ScorerPINHash *string             `json:"-" db:"scorer_pin_hash"`
	Criteria      []TieBreakCriterion `json:"criteria" db:"criteria"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	LogoKey       *string             `json:"-" db:"logo_key"`
	LogoURL       *string             `json:"logo_url,omitempty" db:"-"`

	Organizer *User    `json:"organizer,omitempty" db:"-"`
	Teams     []Team   `json:"teams,omitempty" db:"-"`
	Players   []Player `json:"players,omitempty" db:"-"`
	Matches   []Match  `json:"matches,omitempty" db:"-"`
}
