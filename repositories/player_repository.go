package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/badminton-league/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound          = errors.New("player not found")
	ErrPlayerTournamentInvalid = errors.New("player tournament conflict or invalid")
	ErrPlayerUserInvalid       = errors.New("player user conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Player, error)
	CountTeamMemberships(ctx context.Context, playerID int) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (tournament_id, name, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.TournamentID, player.Name, player.UserID,
	).Scan(&player.ID, &player.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "players_tournament_id_fkey":
			return ErrPlayerTournamentInvalid
		case "players_user_id_fkey":
			return ErrPlayerUserInvalid
		}
	}
	return err
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, tournament_id, name, user_id, created_at FROM players WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID, &player.TournamentID, &player.Name, &player.UserID, &player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	query := `
		SELECT id, tournament_id, name, user_id, created_at
		FROM players
		WHERE tournament_id = $1
		ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(&player.ID, &player.TournamentID, &player.Name, &player.UserID, &player.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) CountTeamMemberships(ctx context.Context, playerID int) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE player_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, playerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
