package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/badminton-league/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name already in use within tournament")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
	ErrTeamMemberConflict    = errors.New("player is already a member of the team")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateTally(ctx context.Context, exec SQLExecutor, teamID, deltaWins, deltaLosses, deltaPoints int) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	AddMember(ctx context.Context, teamID, playerID, position int) error
	RemoveMember(ctx context.Context, teamID, playerID int) error
	ListMembers(ctx context.Context, teamID int) ([]models.Player, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, tournament_id, name, owner_user_id, wins, losses, points, logo_key, created_at`

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var team models.Team
	err := rowScanner.Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.OwnerUserID,
		&team.Wins,
		&team.Losses,
		&team.Points,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (tournament_id, name, owner_user_id)
		VALUES ($1, $2, $3)
		RETURNING id, wins, losses, points, created_at`

	err := executor.QueryRowContext(ctx, query,
		team.TournamentID, team.Name, team.OwnerUserID,
	).Scan(&team.ID, &team.Wins, &team.Losses, &team.Points, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := r.scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpdateTally applies win/loss/points deltas. Only the result finalizer may
// call this, inside the same transaction as the match status transition.
func (r *postgresTeamRepository) UpdateTally(ctx context.Context, exec SQLExecutor, teamID, deltaWins, deltaLosses, deltaPoints int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET wins = wins + $1, losses = losses + $2, points = points + $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, deltaWins, deltaLosses, deltaPoints, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, teamID, playerID, position int) error {
	query := `INSERT INTO team_members (team_id, player_id, position) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, teamID, playerID, position)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrTeamMemberConflict
	}
	return err
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, playerID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT p.id, p.tournament_id, p.name, p.user_id, p.created_at
		FROM players p
		JOIN team_members tm ON tm.player_id = p.id
		WHERE tm.team_id = $1
		ORDER BY tm.position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(&player.ID, &player.TournamentID, &player.Name, &player.UserID, &player.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM teams WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrTeamNameConflict
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "teams_tournament_id_fkey" {
				return ErrTeamTournamentInvalid
			}
		}
	}
	return err
}
