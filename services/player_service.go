package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
)

type AddPlayerInput struct {
	TournamentID int    `json:"tournament_id"`
	Name         string `json:"name"`
	UserID       *int   `json:"user_id,omitempty"`
}

type PlayerService interface {
	AddToPool(ctx context.Context, input AddPlayerInput, actorUserID int, actorRole models.UserRole) (*models.Player, error)
	ListPool(ctx context.Context, tournamentID int) ([]*models.Player, error)
	RemoveFromPool(ctx context.Context, playerID int, actorUserID int, actorRole models.UserRole) error
}

type playerService struct {
	playerRepo     repositories.PlayerRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
) PlayerService {
	return &playerService{
		playerRepo:     playerRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
	}
}

// AddToPool registers a player in the tournament pool. A registered player
// is linked to an account and takes its display name when none is supplied;
// a guest is a name-only entry.
func (s *playerService) AddToPool(ctx context.Context, input AddPlayerInput, actorUserID int, actorRole models.UserRole) (*models.Player, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return nil, err
	}
	if tournament.Locked {
		return nil, ErrTournamentLocked
	}

	name := strings.TrimSpace(input.Name)
	if input.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *input.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to load user %d: %w", *input.UserID, err)
		}
		if name == "" {
			name = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}

	player := &models.Player{
		TournamentID: input.TournamentID,
		Name:         name,
		UserID:       input.UserID,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to add player to pool: %w", err)
	}
	return player, nil
}

func (s *playerService) ListPool(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player pool for tournament %d: %w", tournamentID, err)
	}
	return players, nil
}

// RemoveFromPool deletes a pool entry. Players assigned to a team roster are
// still referenced by matches through that team and stay put; historical
// match records are never rewritten by pool changes.
func (s *playerService) RemoveFromPool(ctx context.Context, playerID int, actorUserID int, actorRole models.UserRole) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to load player %d: %w", playerID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, player.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", player.TournamentID, err)
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}
	if tournament.Locked {
		return ErrTournamentLocked
	}

	memberships, err := s.playerRepo.CountTeamMemberships(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to count team memberships for player %d: %w", playerID, err)
	}
	if memberships > 0 {
		return ErrPlayerOnTeam
	}

	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to remove player %d: %w", playerID, err)
	}
	return nil
}
