package domain

import "errors"

var (
	// ErrEventNotFound is returned when an activity points at an unknown event.
	ErrEventNotFound = errors.New("event not found")
	// ErrActivityNotFound indicates the activity content could not be loaded.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrActivityNotFrozen is returned when teams submit before the activity is released.
	ErrActivityNotFrozen = errors.New("activity not available yet")
	// ErrEventClosed is returned when the event does not accept submissions.
	ErrEventClosed = errors.New("event is not open")
	// ErrAlreadySubmitted enforces one submission per team and activity.
	ErrAlreadySubmitted = errors.New("already submitted this activity")
	// ErrLeaderboardHidden is returned to teams while the leaderboard is admin-only.
	ErrLeaderboardHidden = errors.New("leaderboard is not visible to teams")
	// ErrTeamNotFound indicates a request without a known team identity.
	ErrTeamNotFound = errors.New("team not found")
	// ErrInvalidVisibility rejects leaderboard visibilities other than ADMIN_ONLY and TEAMS.
	ErrInvalidVisibility = errors.New("invalid leaderboard visibility")
	// ErrInvalidTeamName rejects team registrations without a display name.
	ErrInvalidTeamName = errors.New("team name is required")
)
