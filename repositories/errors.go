package repositories

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrMemberNotFound       = errors.New("team member not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
