package services

import "errors"

// Sentinel errors shared across services and mapped to machine codes
// by the HTTP layer. Reactive (trigger-driven) paths never surface
// these to a caller; they log and return early instead.
var (
	// Not found / failed preconditions
	ErrUserNotFound         = errors.New("the specified user does not exist")
	ErrTeamNotFound         = errors.New("the specified team does not exist")
	ErrMatchNotFound        = errors.New("the specified match does not exist")
	ErrTournamentNotFound   = errors.New("the specified tournament does not exist")
	ErrMemberNotFound       = errors.New("the specified member does not exist")
	ErrNotificationNotFound = errors.New("the specified notification does not exist")

	// Invalid arguments
	ErrMissingParameters    = errors.New("required parameters are missing")
	ErrUsernameInvalid      = errors.New("username must be 4-30 lowercase characters: letters, numbers and underscores")
	ErrTeamNameInvalid      = errors.New("team name must be 4-30 lowercase characters: letters, numbers and underscores")
	ErrAccountTypeInvalid   = errors.New("invalid account type")
	ErrResultRequired       = errors.New("the result parameter is required")
	ErrScoresIncomplete     = errors.New("the match result should be set for both teams")
	ErrNoFieldsToUpdate     = errors.New("at least one field to update is required")
	ErrInvalidAction        = errors.New("action must be accept, decline or view")

	// Conflicts
	ErrUserAlreadyExists = errors.New("the user already exists")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrTeamNameTaken     = errors.New("team name is already taken")

	// Match lifecycle preconditions
	ErrMatchNotClassic        = errors.New("the specified match is not a classic match")
	ErrMatchAlreadyOver       = errors.New("the match is already finished or canceled")
	ErrMatchRefereeOnly       = errors.New("the match is pending or in progress and only the refree can edit it")
	ErrMatchAwaitingReferee   = errors.New("the match is waiting for the refree and cannot be edited until the invite is answered")
	ErrMatchCoachesOnly       = errors.New("the match is in coachs_edit status and only the coachs can edit it")
	ErrMatchPendingRestricted = errors.New("the match is pending and the refree can only set it in progress or cancel it")
	ErrMatchInProgressLocked  = errors.New("the match is in progress and cannot be canceled")
	ErrNotCoachOfMatch        = errors.New("the caller is not a coach of either team")
	ErrStartNotInFuture       = errors.New("the match start date should be in the future")
	ErrLocationInvalid        = errors.New("the location should be a google maps place link")
	ErrRefereeRequired        = errors.New("the specified user is not a refree")

	// Team administration preconditions
	ErrUserNotCoach        = errors.New("the specified user is not a coach")
	ErrNotTeamCoach        = errors.New("the specified user is not the coach of the team")
	ErrCoachAlreadyInTeam  = errors.New("the coach is already a member of a team")
	ErrSameCoachAndMember  = errors.New("the coach and the member must be different users")
	ErrTeamNotEmpty        = errors.New("the team is not empty")
	ErrTeamHasActiveMatches = errors.New("the team has matches that are not finished or canceled")

	// Account-type transition preconditions
	ErrAccountTypeUnchanged       = errors.New("the account type is already the same")
	ErrStillTeamMember            = errors.New("the user is still a member of a team")
	ErrRefereeHasActiveMatches    = errors.New("the user is refree in a match that is not finished or canceled")
	ErrRefereeListedInTournament  = errors.New("the user is listed as referee in a tournament")
	ErrManagerHasActiveTournament = errors.New("the user manages a tournament that is not finished or canceled")

	// Tournament roster preconditions
	ErrUserNotManager        = errors.New("the specified user is not a tournament manager")
	ErrNotTournamentManager  = errors.New("the specified user is not the manager of the tournament")
	ErrUserNotReferee        = errors.New("the specified user is not a referee")
	ErrTeamNotInTournament   = errors.New("the team is not in the tournament")
	ErrRefereeNotInTournament = errors.New("the referee is not in the tournament")
	ErrTournamentNotPending  = errors.New("the tournament is not in pending status")

	// Notification responses
	ErrActionAlreadySet = errors.New("the notification action has already been set")
)
