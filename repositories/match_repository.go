package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/courtside/badminton-league/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
	ErrMatchWinnerInvalid     = errors.New("match winner conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	UpdateSets(ctx context.Context, id int, sets []models.SetScore) error
	UpdateStatusIf(ctx context.Context, id int, expected, next models.MatchStatus) (bool, error)
	FinalizeIf(ctx context.Context, exec SQLExecutor, id int, expected models.MatchStatus, winnerTeamID int, sets []models.SetScore, completedAt time.Time) (bool, error)
	CountCompletedByTeam(ctx context.Context, teamID int) (int, error)
	DeleteScheduledByTeam(ctx context.Context, exec SQLExecutor, teamID int) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func marshalSets(sets []models.SetScore) ([]byte, error) {
	if sets == nil {
		sets = []models.SetScore{}
	}
	data, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal set scores: %w", err)
	}
	return data, nil
}

func unmarshalSets(data []byte, match *models.Match) error {
	if len(data) == 0 {
		match.Sets = []models.SetScore{}
		return nil
	}
	if err := json.Unmarshal(data, &match.Sets); err != nil {
		return fmt.Errorf("failed to unmarshal set scores for match %d: %w", match.ID, err)
	}
	return nil
}

const matchColumns = `id, tournament_id, team_a_id, team_b_id, sets, best_of, target_points, court, round, match_time, status, winner_team_id, completed_at, created_at`

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var match models.Match
	var setsRaw []byte
	err := rowScanner.Scan(
		&match.ID,
		&match.TournamentID,
		&match.TeamAID,
		&match.TeamBID,
		&setsRaw,
		&match.BestOf,
		&match.TargetPoints,
		&match.Court,
		&match.Round,
		&match.MatchTime,
		&match.Status,
		&match.WinnerTeamID,
		&match.CompletedAt,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if err := unmarshalSets(setsRaw, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	setsRaw, err := marshalSets(match.Sets)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(tournament_id, team_a_id, team_b_id, sets, best_of, target_points, court, round, match_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.TeamAID,
		match.TeamBID,
		setsRaw,
		match.BestOf,
		match.TargetPoints,
		match.Court,
		match.Round,
		match.MatchTime,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC NULLS LAST, match_time ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// UpdateSets overwrites the running set scores of a not-yet-completed match.
func (r *postgresMatchRepository) UpdateSets(ctx context.Context, id int, sets []models.SetScore) error {
	setsRaw, err := marshalSets(sets)
	if err != nil {
		return err
	}

	query := `UPDATE matches SET sets = $1 WHERE id = $2 AND status <> $3`
	result, err := r.db.ExecContext(ctx, query, setsRaw, id, models.MatchStatusCompleted)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateStatusIf advances the match status only when the row still holds the
// expected pre-state. A false return with nil error means another writer got
// there first.
func (r *postgresMatchRepository) UpdateStatusIf(ctx context.Context, id int, expected, next models.MatchStatus) (bool, error) {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

// FinalizeIf is the compare-and-swap write the result finalizer relies on:
// the row is completed only if its status still equals the expected
// pre-state. Zero rows affected reports false so concurrent finalize
// attempts serialize to exactly one winner.
func (r *postgresMatchRepository) FinalizeIf(ctx context.Context, exec SQLExecutor, id int, expected models.MatchStatus, winnerTeamID int, sets []models.SetScore, completedAt time.Time) (bool, error) {
	executor := r.getExecutor(exec)
	setsRaw, err := marshalSets(sets)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE matches
		SET status = $1, winner_team_id = $2, sets = $3, completed_at = $4
		WHERE id = $5 AND status = $6`

	result, err := executor.ExecContext(ctx, query,
		models.MatchStatusCompleted, winnerTeamID, setsRaw, completedAt, id, expected)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresMatchRepository) CountCompletedByTeam(ctx context.Context, teamID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE (team_a_id = $1 OR team_b_id = $1) AND status = $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, teamID, models.MatchStatusCompleted).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteScheduledByTeam removes not-yet-played matches referencing a team
// being deleted. Completed matches are never touched here.
func (r *postgresMatchRepository) DeleteScheduledByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	executor := r.getExecutor(exec)
	query := `
		DELETE FROM matches
		WHERE (team_a_id = $1 OR team_b_id = $1) AND status <> $2`
	_, err := executor.ExecContext(ctx, query, teamID, models.MatchStatusCompleted)
	return err
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM matches WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey":
				return ErrMatchTeamInvalid
			case "matches_winner_team_id_fkey":
				return ErrMatchWinnerInvalid
			}
		}
	}
	return err
}
