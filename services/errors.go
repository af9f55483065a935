package services

import "errors"

// Shared sentinel errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrTeamNameRequired         = errors.New("team name is required")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentInvalidCourts  = errors.New("tournament must have at least one court")
	ErrTournamentInvalidBestOf  = errors.New("best-of must be a positive odd number of sets")
	ErrTournamentInvalidTarget  = errors.New("target points per set must be positive")
	ErrScorerPINInvalid         = errors.New("scorer PIN must be 4 to 8 digits")
	ErrTournamentNotLocked      = errors.New("tournament must be locked before matches can be scheduled")
	ErrTournamentLocked         = errors.New("tournament is locked, pool and roster can no longer change")
	ErrScheduleAlreadyGenerated = errors.New("tournament already has scheduled matches")
	ErrLogoStorageDisabled      = errors.New("logo storage is not configured")

	// Scoring and finalization
	ErrMatchDrawn        = errors.New("match is drawn, a winner cannot be determined")
	ErrInvalidSetCount   = errors.New("recorded set count does not fit the configured best-of format")
	ErrNegativeSetScore  = errors.New("set scores must be non-negative")
	ErrAlreadyFinalized  = errors.New("match result has already been recorded")
	ErrMatchNotLive      = errors.New("match is not live")
	ErrMatchNotStartable = errors.New("match is not in a startable state")

	// Conflicts
	ErrTeamHasCompletedMatches = errors.New("team has completed matches and cannot be deleted")
	ErrPlayerOnTeam            = errors.New("player is assigned to a team and cannot be removed from the pool")
	ErrTeamNameConflict        = errors.New("team name is already in use within the tournament")
	ErrTournamentNameConflict  = errors.New("tournament name already exists")
	ErrTeamMemberConflict      = errors.New("player is already a member of the team")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrFinalizeForbidden      = errors.New("caller is not allowed to submit match results")

	// Entity-specific not-found variants for more context than ErrNotFound
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	// Tournament lifecycle
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
