package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/courtside/badminton-league/live"
	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// nop driver: the service opens transactions on the real database, the
// fakes below ignore the executor, so Begin/Commit can be no-ops.

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) { return nopConn{}, nil }
func (nopConnector) Driver() driver.Driver                        { return nopDriver{} }

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

func newFakeDB() *sql.DB {
	return sql.OpenDB(nopConnector{})
}

type fakeMatchRepo struct {
	repositories.MatchRepository
	mu      sync.Mutex
	matches map[int]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = m
	}
	return repo
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMatchRepo) FinalizeIf(_ context.Context, _ repositories.SQLExecutor, id int, expected models.MatchStatus, winnerTeamID int, sets []models.SetScore, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.Status != expected {
		return false, nil
	}
	m.Status = models.MatchStatusCompleted
	m.WinnerTeamID = &winnerTeamID
	m.Sets = sets
	m.CompletedAt = &completedAt
	return true, nil
}

type fakeTeamRepo struct {
	repositories.TeamRepository
	mu         sync.Mutex
	teams      map[int]*models.Team
	members    map[int][]models.Player
	tallyCalls int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{
		teams:   make(map[int]*models.Team),
		members: make(map[int][]models.Player),
	}
	for _, t := range teams {
		repo.teams[t.ID] = t
	}
	return repo
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTeamRepo) UpdateTally(_ context.Context, _ repositories.SQLExecutor, teamID, deltaWins, deltaLosses, deltaPoints int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Wins += deltaWins
	t.Losses += deltaLosses
	t.Points += deltaPoints
	r.tallyCalls++
	return nil
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

type fakeLedgerRepo struct {
	repositories.LedgerRepository
	mu      sync.Mutex
	entries []*models.LedgerEntry
}

func (r *fakeLedgerRepo) Append(_ context.Context, _ repositories.SQLExecutor, entry *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = len(r.entries) + 1
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	mu      sync.Mutex
	credits map[int]int
	users   map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		credits: make(map[int]int),
		users:   make(map[string]*models.User),
	}
}

func (r *fakeUserRepo) AddCredits(_ context.Context, _ repositories.SQLExecutor, userID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credits[userID] += amount
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	rooms  []string
	events []live.Event
}

func (n *fakeNotifier) BroadcastToRoom(roomID string, event live.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rooms = append(n.rooms, roomID)
	n.events = append(n.events, event)
}

type resultFixture struct {
	service    ResultService
	matchRepo  *fakeMatchRepo
	teamRepo   *fakeTeamRepo
	ledgerRepo *fakeLedgerRepo
	userRepo   *fakeUserRepo
	notifier   *fakeNotifier
}

func newResultFixture(t *testing.T, tournament *models.Tournament, match *models.Match, teams []*models.Team, reward RewardConfig) *resultFixture {
	t.Helper()
	f := &resultFixture{
		matchRepo:  newFakeMatchRepo(match),
		teamRepo:   newFakeTeamRepo(teams...),
		ledgerRepo: &fakeLedgerRepo{},
		userRepo:   newFakeUserRepo(),
		notifier:   &fakeNotifier{},
	}
	f.service = NewResultService(
		newFakeDB(),
		f.matchRepo,
		f.teamRepo,
		newFakeTournamentRepo(tournament),
		f.ledgerRepo,
		f.userRepo,
		reward,
		f.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func testTournament() *models.Tournament {
	return &models.Tournament{
		ID:           1,
		Name:         "Spring League",
		OrganizerID:  10,
		Status:       models.TournamentStatusActive,
		Locked:       true,
		Courts:       2,
		BestOf:       3,
		TargetPoints: 21,
		PointsPerWin: 2,
	}
}

func liveMatch(sets ...models.SetScore) *models.Match {
	return &models.Match{
		ID:           100,
		TournamentID: 1,
		TeamAID:      1,
		TeamBID:      2,
		Sets:         sets,
		BestOf:       3,
		TargetPoints: 21,
		Status:       models.MatchStatusLive,
	}
}

func organizerScorer() Scorer {
	return Scorer{UserID: 10, Role: models.RoleOrganizer}
}

func TestFinalizeRecordsWinnerAndMovesTallies(t *testing.T) {
	match := liveMatch(
		models.SetScore{A: 21, B: 15},
		models.SetScore{A: 18, B: 21},
		models.SetScore{A: 21, B: 19},
	)
	teams := []*models.Team{
		{ID: 1, TournamentID: 1, Name: "Smash Bros"},
		{ID: 2, TournamentID: 1, Name: "Net Gains"},
	}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	got, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.NoError(t, err)
	require.NotNil(t, got.WinnerTeamID)
	assert.Equal(t, 1, *got.WinnerTeamID)
	assert.Equal(t, models.MatchStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	stored, err := f.matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, stored.Status)

	winner, _ := f.teamRepo.GetByID(context.Background(), 1)
	loser, _ := f.teamRepo.GetByID(context.Background(), 2)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Equal(t, 2, winner.Points)
	assert.Equal(t, 0, loser.Wins)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 0, loser.Points)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, live.EventMatchCompleted, f.notifier.events[0].Type)
	assert.Equal(t, "1", f.notifier.rooms[0])
}

func TestFinalizeFromScheduledState(t *testing.T) {
	match := liveMatch(models.SetScore{A: 21, B: 12}, models.SetScore{A: 21, B: 14})
	match.Status = models.MatchStatusScheduled
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	got, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, got.Status)
}

func TestFinalizeDrawnMatchRejected(t *testing.T) {
	match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 15, B: 21})
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.ErrorIs(t, err, ErrMatchDrawn)

	stored, _ := f.matchRepo.GetByID(context.Background(), match.ID)
	assert.Equal(t, models.MatchStatusLive, stored.Status)
	assert.Nil(t, stored.WinnerTeamID)
	assert.Zero(t, f.teamRepo.tallyCalls)
}

func TestFinalizeAlreadyCompletedRejected(t *testing.T) {
	winner := 1
	match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 15})
	match.Status = models.MatchStatusCompleted
	match.WinnerTeamID = &winner
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Zero(t, f.teamRepo.tallyCalls)
}

func TestFinalizeAuthorizationPrecedesScoreChecks(t *testing.T) {
	// The sets are invalid too, but an unauthorized caller must see the
	// permission error, not learn anything about the recorded scores.
	match := liveMatch()
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	_, err := f.service.Finalize(context.Background(), match.ID, Scorer{UserID: 99, Role: models.RolePlayer})

	require.ErrorIs(t, err, ErrFinalizeForbidden)
	assert.Zero(t, f.teamRepo.tallyCalls)
}

func TestFinalizeInvalidSetCount(t *testing.T) {
	match := liveMatch()
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.ErrorIs(t, err, ErrInvalidSetCount)
}

func TestFinalizeScorerPIN(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	tournament := testTournament()
	tournament.ScorerPINHash = &hashStr

	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	t.Run("valid PIN finalizes", func(t *testing.T) {
		match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 17})
		f := newResultFixture(t, tournament, match, teams, RewardConfig{})

		got, err := f.service.Finalize(context.Background(), match.ID, Scorer{PIN: "4321"})

		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, got.Status)
	})

	t.Run("wrong PIN rejected", func(t *testing.T) {
		match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 17})
		f := newResultFixture(t, tournament, match, teams, RewardConfig{})

		_, err := f.service.Finalize(context.Background(), match.ID, Scorer{PIN: "0000"})

		require.ErrorIs(t, err, ErrFinalizeForbidden)
	})
}

func TestFinalizeCreditsWinBonus(t *testing.T) {
	owner := 7
	match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 17})
	teams := []*models.Team{
		{ID: 1, TournamentID: 1, Name: "Smash Bros", OwnerUserID: &owner},
		{ID: 2, TournamentID: 1, Name: "Net Gains"},
	}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{Enabled: true, BonusCredits: 50})

	_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.NoError(t, err)
	require.Len(t, f.ledgerRepo.entries, 1)
	entry := f.ledgerRepo.entries[0]
	assert.Equal(t, owner, entry.UserID)
	assert.Equal(t, 50, entry.Amount)
	require.NotNil(t, entry.RelatedMatchID)
	assert.Equal(t, match.ID, *entry.RelatedMatchID)
	assert.Equal(t, 50, f.userRepo.credits[owner])
}

func TestFinalizeNoBonusWithoutOwner(t *testing.T) {
	match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 17})
	teams := []*models.Team{
		{ID: 1, TournamentID: 1, Name: "Smash Bros"},
		{ID: 2, TournamentID: 1, Name: "Net Gains"},
	}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{Enabled: true, BonusCredits: 50})

	_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())

	require.NoError(t, err)
	assert.Empty(t, f.ledgerRepo.entries)
	assert.Empty(t, f.userRepo.credits)
}

func TestFinalizeConcurrentCallsRecordExactlyOnce(t *testing.T) {
	match := liveMatch(models.SetScore{A: 21, B: 15}, models.SetScore{A: 21, B: 17})
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), match, teams, RewardConfig{})

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Finalize(context.Background(), match.ID, organizerScorer())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyFinalized):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	winner, _ := f.teamRepo.GetByID(context.Background(), 1)
	assert.Equal(t, 1, winner.Wins, "tally must move exactly once")
	assert.Equal(t, 2, f.teamRepo.tallyCalls)
}

func TestFinalizeUnknownMatch(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	f := newResultFixture(t, testTournament(), liveMatch(models.SetScore{A: 21, B: 15}), teams, RewardConfig{})

	_, err := f.service.Finalize(context.Background(), 999, organizerScorer())

	require.ErrorIs(t, err, ErrMatchNotFound)
}
