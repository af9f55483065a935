package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/badminton-league/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentOwnerInvalid = errors.New("tournament organizer conflict or invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	SetLocked(ctx context.Context, id int, locked bool) error
	SetScorerPINHash(ctx context.Context, id int, pinHash *string) error
	SetCriteria(ctx context.Context, id int, criteria []models.TieBreakCriterion) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, description, organizer_id, status, locked, start_date, location, courts, best_of, target_points, points_per_win, double_round, scorer_pin_hash, criteria, logo_key, created_at`

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	var criteria pq.StringArray
	err := rowScanner.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.OrganizerID,
		&t.Status,
		&t.Locked,
		&t.StartDate,
		&t.Location,
		&t.Courts,
		&t.BestOf,
		&t.TargetPoints,
		&t.PointsPerWin,
		&t.DoubleRound,
		&t.ScorerPINHash,
		&criteria,
		&t.LogoKey,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.Criteria = make([]models.TieBreakCriterion, 0, len(criteria))
	for _, name := range criteria {
		t.Criteria = append(t.Criteria, models.TieBreakCriterion(name))
	}
	return &t, nil
}

func criteriaArray(criteria []models.TieBreakCriterion) pq.StringArray {
	names := make(pq.StringArray, 0, len(criteria))
	for _, c := range criteria {
		names = append(names, string(c))
	}
	return names
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, description, organizer_id, status, locked, start_date, location, courts, best_of, target_points, points_per_win, double_round, criteria)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.OrganizerID,
		tournament.Status,
		tournament.Locked,
		tournament.StartDate,
		tournament.Location,
		tournament.Courts,
		tournament.BestOf,
		tournament.TargetPoints,
		tournament.PointsPerWin,
		tournament.DoubleRound,
		criteriaArray(tournament.Criteria),
	).Scan(&tournament.ID, &tournament.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentNameConflict
		case "23503":
			return ErrTournamentOwnerInvalid
		}
	}
	return err
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, statusFilter *models.TournamentStatus) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments`
	args := []interface{}{}
	if statusFilter != nil {
		query += ` WHERE status = $1`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetLocked(ctx context.Context, id int, locked bool) error {
	query := `UPDATE tournaments SET locked = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, locked, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetScorerPINHash(ctx context.Context, id int, pinHash *string) error {
	query := `UPDATE tournaments SET scorer_pin_hash = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, pinHash, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetCriteria(ctx context.Context, id int, criteria []models.TieBreakCriterion) error {
	query := `UPDATE tournaments SET criteria = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, criteriaArray(criteria), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
