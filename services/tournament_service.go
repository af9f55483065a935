package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
	"github.com/courtside/badminton-league/storage"
	"golang.org/x/crypto/bcrypt"
)

const defaultPointsPerWin = 2

type CreateTournamentInput struct {
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	Location     *string   `json:"location,omitempty"`
	Courts       int       `json:"courts"`
	BestOf       int       `json:"best_of"`
	TargetPoints int       `json:"target_points"`
	PointsPerWin int       `json:"points_per_win"`
	DoubleRound  bool      `json:"double_round"`
	Criteria     []string  `json:"criteria,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput, organizerID int) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	SetLocked(ctx context.Context, id int, locked bool, actorUserID int, actorRole models.UserRole) error
	SetScorerPIN(ctx context.Context, id int, pin string, actorUserID int, actorRole models.UserRole) error
	SetCriteria(ctx context.Context, id int, criteria []string, actorUserID int, actorRole models.UserRole) error
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus, actorUserID int, actorRole models.UserRole) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, uploader storage.FileUploader) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput, organizerID int) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Courts < 1 {
		return nil, ErrTournamentInvalidCourts
	}
	if input.BestOf < 1 || input.BestOf%2 == 0 {
		return nil, ErrTournamentInvalidBestOf
	}
	if input.TargetPoints < 1 {
		return nil, ErrTournamentInvalidTarget
	}

	criteria, err := models.ParseTieBreakCriteria(input.Criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	pointsPerWin := input.PointsPerWin
	if pointsPerWin <= 0 {
		pointsPerWin = defaultPointsPerWin
	}

	tournament := &models.Tournament{
		Name:         name,
		Description:  input.Description,
		OrganizerID:  organizerID,
		Status:       models.TournamentStatusDraft,
		StartDate:    input.StartDate,
		Location:     input.Location,
		Courts:       input.Courts,
		BestOf:       input.BestOf,
		TargetPoints: input.TargetPoints,
		PointsPerWin: pointsPerWin,
		DoubleRound:  input.DoubleRound,
		Criteria:     criteria,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	tournament.LogoURL = populateLogoURL(s.uploader, tournament.LogoKey)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	if status != nil && !status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, tournament := range tournaments {
		tournament.LogoURL = populateLogoURL(s.uploader, tournament.LogoKey)
	}
	return tournaments, nil
}

func (s *tournamentService) SetLocked(ctx context.Context, id int, locked bool, actorUserID int, actorRole models.UserRole) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}
	if err := s.tournamentRepo.SetLocked(ctx, id, locked); err != nil {
		return fmt.Errorf("failed to set lock on tournament %d: %w", id, err)
	}
	return nil
}

// SetScorerPIN stores a new scorer PIN for the tournament, bcrypt-hashed. An
// empty PIN clears it, disabling PIN-based score submission.
func (s *tournamentService) SetScorerPIN(ctx context.Context, id int, pin string, actorUserID int, actorRole models.UserRole) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}

	if pin == "" {
		if err := s.tournamentRepo.SetScorerPINHash(ctx, id, nil); err != nil {
			return fmt.Errorf("failed to clear scorer PIN for tournament %d: %w", id, err)
		}
		return nil
	}

	if !isValidPIN(pin) {
		return ErrScorerPINInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash scorer PIN: %w", err)
	}
	hashStr := string(hash)
	if err := s.tournamentRepo.SetScorerPINHash(ctx, id, &hashStr); err != nil {
		return fmt.Errorf("failed to store scorer PIN for tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) SetCriteria(ctx context.Context, id int, criteriaNames []string, actorUserID int, actorRole models.UserRole) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}

	criteria, err := models.ParseTieBreakCriteria(criteriaNames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.tournamentRepo.SetCriteria(ctx, id, criteria); err != nil {
		return fmt.Errorf("failed to store criteria for tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus, actorUserID int, actorRole models.UserRole) error {
	if !status.Valid() {
		return ErrTournamentInvalidStatus
	}
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return nil
}

func isValidPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
