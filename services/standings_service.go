package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
	"github.com/courtside/badminton-league/standings"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
	}
}

// GetStandings serves the current league table, recomputed on demand from
// completed matches. Nothing is persisted; calling it repeatedly with an
// unchanged tournament yields an identical table.
func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	var (
		teams   []*models.Team
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		teams, fetchErr = s.teamRepo.ListByTournament(gCtx, tournamentID)
		if fetchErr != nil {
			return fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, fetchErr)
		}
		return nil
	})
	g.Go(func() error {
		completed := models.MatchStatusCompleted
		var fetchErr error
		matches, fetchErr = s.matchRepo.ListByTournament(gCtx, tournamentID, &completed)
		if fetchErr != nil {
			return fmt.Errorf("failed to list completed matches for tournament %d: %w", tournamentID, fetchErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return standings.Compute(teams, matches, tournament.Criteria), nil
}
