package models

import "time"

// LedgerEntry is one append-only credit movement on a user account, e.g. the
// win bonus credited when a match is finalized.
type LedgerEntry struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	Amount         int       `json:"amount" db:"amount"`
	Reason         string    `json:"reason" db:"reason"`
	RelatedMatchID *int      `json:"related_match_id,omitempty" db:"related_match_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
