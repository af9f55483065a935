package models

import "time"

// Team is a competitive unit inside one tournament. Singles play is modeled
// as a one-member team so match and standings logic has a single participant
// shape to work with.
//
// Wins, Losses and Points are caches derived from completed matches. They are
// mutated only by the result finalizer, inside the same transaction as the
// match status transition.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	OwnerUserID  *int      `json:"owner_user_id,omitempty" db:"owner_user_id"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	Points       int       `json:"points" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Members []Player `json:"members,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
