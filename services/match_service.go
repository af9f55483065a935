package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/courtside/badminton-league/live"
	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
	"github.com/courtside/badminton-league/schedule"
)

// matchSlotInterval is the planning gap between consecutive match slots on
// the same court.
const matchSlotInterval = 40 * time.Minute

type MatchService interface {
	GenerateSchedule(ctx context.Context, tournamentID, actorUserID int, actorRole models.UserRole) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	Start(ctx context.Context, matchID int, scorer Scorer) (*models.Match, error)
	UpdateScore(ctx context.Context, matchID int, sets []models.SetScore, scorer Scorer) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	generator      schedule.Generator
	notifier       LiveNotifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	generator schedule.Generator,
	notifier LiveNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		generator:      generator,
		notifier:       notifier,
		logger:         logger,
	}
}

// GenerateSchedule produces the round-robin fixture list for a locked
// tournament and persists it in one transaction. Matches can only be created
// once and only after the pool has stopped changing.
func (s *matchService) GenerateSchedule(ctx context.Context, tournamentID, actorUserID int, actorRole models.UserRole) ([]*models.Match, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(tournament, actorUserID, actorRole); err != nil {
		return nil, err
	}
	if !tournament.Locked {
		return nil, ErrTournamentNotLocked
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if len(existing) > 0 {
		return nil, ErrScheduleAlreadyGenerated
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}

	fixtures, err := s.generator.Generate(ctx, schedule.GenerateParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s schedule: %w", s.generator.GetName(), err)
	}

	firstSlot := tournament.StartDate
	if time.Now().After(firstSlot) {
		firstSlot = time.Now().Add(15 * time.Minute)
	}

	courts := tournament.Courts
	if courts < 1 {
		courts = 1
	}

	matches := make([]*models.Match, 0, len(fixtures))
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for i, fixture := range fixtures {
			round := fixture.Round
			match := &models.Match{
				TournamentID: tournamentID,
				TeamAID:      fixture.TeamAID,
				TeamBID:      fixture.TeamBID,
				BestOf:       tournament.BestOf,
				TargetPoints: tournament.TargetPoints,
				Court:        fixture.Court,
				Round:        &round,
				MatchTime:    firstSlot.Add(time.Duration(i/courts) * matchSlotInterval),
				Status:       models.MatchStatusScheduled,
			}
			if txErr := s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return fmt.Errorf("failed to create match for fixture %d: %w", fixture.Order, txErr)
			}
			matches = append(matches, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(matches)))

	return matches, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

// Start flips a scheduled match to live via a conditional update so two
// courtside clients cannot both "open" the match.
func (s *matchService) Start(ctx context.Context, matchID int, scorer Scorer) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.loadTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeScorer(tournament, scorer); err != nil {
		return nil, err
	}

	ok, err := s.matchRepo.UpdateStatusIf(ctx, matchID, models.MatchStatusScheduled, models.MatchStatusLive)
	if err != nil {
		return nil, fmt.Errorf("failed to start match %d: %w", matchID, err)
	}
	if !ok {
		if match.Status == models.MatchStatusCompleted {
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrMatchNotStartable
	}

	match.Status = models.MatchStatusLive
	if s.notifier != nil {
		s.notifier.BroadcastToRoom(strconv.Itoa(match.TournamentID), live.Event{
			Type:    live.EventMatchStarted,
			Payload: match,
		})
	}
	return match, nil
}

// UpdateScore replaces the running set scores of a live match. Winner
// determination and tallies are the finalizer's job; this only validates
// shape and broadcasts the new score.
func (s *matchService) UpdateScore(ctx context.Context, matchID int, sets []models.SetScore, scorer Scorer) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.loadTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeScorer(tournament, scorer); err != nil {
		return nil, err
	}

	switch match.Status {
	case models.MatchStatusCompleted:
		return nil, ErrAlreadyFinalized
	case models.MatchStatusScheduled:
		return nil, ErrMatchNotLive
	}

	if err := validateSets(sets, match.BestOf); err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateSets(ctx, matchID, sets); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			// The row flipped to completed between read and write.
			return nil, ErrAlreadyFinalized
		}
		return nil, fmt.Errorf("failed to update score for match %d: %w", matchID, err)
	}

	match.Sets = sets
	if s.notifier != nil {
		s.notifier.BroadcastToRoom(strconv.Itoa(match.TournamentID), live.Event{
			Type:    live.EventScoreUpdated,
			Payload: match,
		})
	}
	return match, nil
}

func (s *matchService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}
