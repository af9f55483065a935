package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/storage"
	"golang.org/x/crypto/bcrypt"
)

// Scorer identifies the caller of a scoring operation. Role and user id come
// from the authenticated request context; PIN is supplied explicitly by
// non-organizer scorers.
type Scorer struct {
	UserID int
	Role   models.UserRole
	PIN    string
}

// authorizeScorer decides whether the caller may mutate scores for the
// tournament: superadmins always, the owning organizer, or anyone holding the
// tournament's scorer PIN. Runs before any score is read.
func authorizeScorer(tournament *models.Tournament, scorer Scorer) error {
	if scorer.Role == models.RoleAdmin {
		return nil
	}
	if scorer.Role == models.RoleOrganizer && scorer.UserID == tournament.OrganizerID {
		return nil
	}
	if scorer.PIN != "" && tournament.ScorerPINHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*tournament.ScorerPINHash), []byte(scorer.PIN)) == nil {
			return nil
		}
	}
	return ErrFinalizeForbidden
}

// requireOrganizer allows only the tournament's organizer or a superadmin.
func requireOrganizer(tournament *models.Tournament, userID int, role models.UserRole) error {
	if role == models.RoleAdmin {
		return nil
	}
	if role == models.RoleOrganizer && userID == tournament.OrganizerID {
		return nil
	}
	return ErrForbiddenOperation
}

// validateSets checks the recorded sets against the match's best-of shape:
// non-negative scores, at least one set, and no more sets than the format
// allows. Trailing unplayed sets of an early clinch are simply absent.
func validateSets(sets []models.SetScore, bestOf int) error {
	if len(sets) == 0 || len(sets) > bestOf {
		return fmt.Errorf("%w: got %d sets for best-of-%d", ErrInvalidSetCount, len(sets), bestOf)
	}
	for _, set := range sets {
		if set.A < 0 || set.B < 0 {
			return ErrNegativeSetScore
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentStatusDraft:        {models.TournamentStatusRegistration, models.TournamentStatusCanceled},
		models.TournamentStatusRegistration: {models.TournamentStatusActive, models.TournamentStatusCanceled},
		models.TournamentStatusActive:       {models.TournamentStatusCompleted, models.TournamentStatusCanceled},
		models.TournamentStatusCompleted:    {},
		models.TournamentStatusCanceled:     {},
	}
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func populateLogoURL(uploader storage.FileUploader, logoKey *string) *string {
	if uploader == nil || logoKey == nil || *logoKey == "" {
		return nil
	}
	url := uploader.GetPublicURL(*logoKey)
	return &url
}
