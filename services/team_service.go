package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
	"github.com/courtside/badminton-league/storage"
)

type CreateTeamInput struct {
	TournamentID int    `json:"tournament_id"`
	Name         string `json:"name"`
	OwnerUserID  *int   `json:"owner_user_id,omitempty"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput, actorUserID int, actorRole models.UserRole) (*models.Team, error)
	GetByID(ctx context.Context, teamID int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, playerID int, actorUserID int, actorRole models.UserRole) error
	RemoveMember(ctx context.Context, teamID, playerID int, actorUserID int, actorRole models.UserRole) error
	UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader, actorUserID int, actorRole models.UserRole) (*models.Team, error)
	Delete(ctx context.Context, teamID int, actorUserID int, actorRole models.UserRole) error
}

type teamService struct {
	db             *sql.DB
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		db:             db,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput, actorUserID int, actorRole models.UserRole) (*models.Team, error) {
	tournament, err := s.loadTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return nil, err
	}
	if tournament.Locked {
		return nil, ErrTournamentLocked
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		TournamentID: input.TournamentID,
		Name:         name,
		OwnerUserID:  input.OwnerUserID,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	team.Members = members
	team.LogoURL = populateLogoURL(s.uploader, team.LogoKey)
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	for _, team := range teams {
		team.LogoURL = populateLogoURL(s.uploader, team.LogoKey)
	}
	return teams, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, playerID int, actorUserID int, actorRole models.UserRole) error {
	team, tournament, err := s.loadTeamAndTournament(ctx, teamID)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}
	if tournament.Locked {
		return ErrTournamentLocked
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to load player %d: %w", playerID, err)
	}
	if player.TournamentID != team.TournamentID {
		return fmt.Errorf("%w: player belongs to a different tournament pool", ErrValidationFailed)
	}

	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}

	if err := s.teamRepo.AddMember(ctx, teamID, playerID, len(members)+1); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return ErrTeamMemberConflict
		}
		return fmt.Errorf("failed to add player %d to team %d: %w", playerID, teamID, err)
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, playerID int, actorUserID int, actorRole models.UserRole) error {
	_, tournament, err := s.loadTeamAndTournament(ctx, teamID)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}
	if tournament.Locked {
		return ErrTournamentLocked
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to remove player %d from team %d: %w", playerID, teamID, err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader, actorUserID int, actorRole models.UserRole) (*models.Team, error) {
	team, tournament, err := s.loadTeamAndTournament(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}

	key := fmt.Sprintf("teams/%d/logo", teamID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %d: %w", teamID, err)
	}

	team.LogoKey = &result.Key
	team.LogoURL = populateLogoURL(s.uploader, team.LogoKey)
	return team, nil
}

// Delete removes a team, cascading removal of its unplayed matches. A team
// with at least one completed match is part of permanent history and cannot
// be deleted.
func (s *teamService) Delete(ctx context.Context, teamID int, actorUserID int, actorRole models.UserRole) error {
	_, tournament, err := s.loadTeamAndTournament(ctx, teamID)
	if err != nil {
		return err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return err
	}

	completed, err := s.matchRepo.CountCompletedByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to count completed matches for team %d: %w", teamID, err)
	}
	if completed > 0 {
		return ErrTeamHasCompletedMatches
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.matchRepo.DeleteScheduledByTeam(ctx, tx, teamID); txErr != nil {
			return fmt.Errorf("failed to delete scheduled matches of team %d: %w", teamID, txErr)
		}
		if txErr := s.teamRepo.Delete(ctx, tx, teamID); txErr != nil {
			if errors.Is(txErr, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to delete team %d: %w", teamID, txErr)
		}
		return nil
	})
}

func (s *teamService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}

func (s *teamService) loadTeamAndTournament(ctx context.Context, teamID int) (*models.Team, *models.Tournament, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	tournament, err := s.loadTournament(ctx, team.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	return team, tournament, nil
}
