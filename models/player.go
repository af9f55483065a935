package models

import "time"

// Player is one entry in a tournament's player pool. A registered player
// carries a linked user account; a guest has a display name only.
type Player struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	UserID       *int      `json:"user_id,omitempty" db:"user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

func (p *Player) IsGuest() bool {
	return p.UserID == nil
}
