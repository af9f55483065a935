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
)

// LiveNotifier receives fire-and-forget events after successful commits.
// Finalization correctness never depends on delivery.
type LiveNotifier interface {
	BroadcastToRoom(roomID string, event live.Event)
}

// RewardConfig controls the optional win bonus credited to the winning
// team's owner account when a result is finalized.
type RewardConfig struct {
	Enabled      bool
	BonusCredits int
}

type ResultService interface {
	Finalize(ctx context.Context, matchID int, scorer Scorer) (*models.Match, error)
}

type resultService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	ledgerRepo     repositories.LedgerRepository
	userRepo       repositories.UserRepository
	reward         RewardConfig
	notifier       LiveNotifier
	logger         *slog.Logger
}

func NewResultService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	ledgerRepo repositories.LedgerRepository,
	userRepo repositories.UserRepository,
	reward RewardConfig,
	notifier LiveNotifier,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		db:             db,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		ledgerRepo:     ledgerRepo,
		userRepo:       userRepo,
		reward:         reward,
		notifier:       notifier,
		logger:         logger,
	}
}

// Finalize converts a match's accumulated set scores into a permanent result
// exactly once: it determines the winner, flips the match to completed via a
// conditional update, and moves both teams' tallies in the same transaction.
// A concurrent or repeated call observes the completed row and gets
// ErrAlreadyFinalized without mutating anything.
func (s *resultService) Finalize(ctx context.Context, matchID int, scorer Scorer) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, err)
	}

	// Authorization happens before any score is evaluated so an
	// unauthorized caller learns nothing about match state.
	if err := authorizeScorer(tournament, scorer); err != nil {
		return nil, err
	}

	if match.Status == models.MatchStatusCompleted {
		return nil, ErrAlreadyFinalized
	}

	if err := validateSets(match.Sets, match.BestOf); err != nil {
		return nil, err
	}

	setsA, setsB := models.SetWins(match.Sets)
	if setsA == setsB {
		return nil, fmt.Errorf("%w: %d sets each", ErrMatchDrawn, setsA)
	}

	winnerID, loserID := match.TeamAID, match.TeamBID
	if setsB > setsA {
		winnerID, loserID = match.TeamBID, match.TeamAID
	}

	winnerTeam, err := s.teamRepo.GetByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load winning team %d: %w", winnerID, err)
	}

	completedAt := time.Now().UTC()
	expectedStatus := match.Status

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, txErr := s.matchRepo.FinalizeIf(ctx, tx, match.ID, expectedStatus, winnerID, match.Sets, completedAt)
		if txErr != nil {
			return fmt.Errorf("failed to finalize match %d: %w", match.ID, txErr)
		}
		if !ok {
			// Another finalize won the conditional update.
			return ErrAlreadyFinalized
		}

		if txErr := s.teamRepo.UpdateTally(ctx, tx, winnerID, 1, 0, tournament.PointsPerWin); txErr != nil {
			return fmt.Errorf("failed to update winner tally: %w", txErr)
		}
		if txErr := s.teamRepo.UpdateTally(ctx, tx, loserID, 0, 1, 0); txErr != nil {
			return fmt.Errorf("failed to update loser tally: %w", txErr)
		}

		if s.reward.Enabled && winnerTeam.OwnerUserID != nil {
			entry := &models.LedgerEntry{
				UserID:         *winnerTeam.OwnerUserID,
				Amount:         s.reward.BonusCredits,
				Reason:         fmt.Sprintf("win bonus for match %d (%s)", match.ID, winnerTeam.Name),
				RelatedMatchID: &match.ID,
			}
			if txErr := s.ledgerRepo.Append(ctx, tx, entry); txErr != nil {
				return fmt.Errorf("failed to append win bonus ledger entry: %w", txErr)
			}
			if txErr := s.userRepo.AddCredits(ctx, tx, *winnerTeam.OwnerUserID, s.reward.BonusCredits); txErr != nil {
				return fmt.Errorf("failed to credit win bonus: %w", txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match.Status = models.MatchStatusCompleted
	match.WinnerTeamID = &winnerID
	match.CompletedAt = &completedAt

	s.logger.Info("match finalized",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("winner_team_id", winnerID),
		slog.Int("sets_a", setsA),
		slog.Int("sets_b", setsB))

	if s.notifier != nil {
		s.notifier.BroadcastToRoom(strconv.Itoa(match.TournamentID), live.Event{
			Type:    live.EventMatchCompleted,
			Payload: match,
		})
	}

	return match, nil
}
