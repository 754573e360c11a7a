package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
)

// RefereeEditType selects the referee operation inside an update
// request once the match left the coach editing phase.
type RefereeEditType string

const (
	RefereeEditResult    RefereeEditType = "edit_result"
	RefereeCancelMatch   RefereeEditType = "cancel_match"
	RefereeEndMatch      RefereeEditType = "end_match"
	RefereeSetInProgress RefereeEditType = "set_in_progress"
)

// MatchResult carries the scores the referee reports.
type MatchResult struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// UpdateMatchRequest is the polymorphic update payload. The coach
// fields apply while the match is in coachs_edit; the referee fields
// apply while it is pending or in progress. Which half is read depends
// on the match status, mirroring the mobile client contract.
type UpdateMatchRequest struct {
	// Coach scheduling proposal.
	StartIn   *int64  `json:"startIn"` // unix milliseconds
	Location  *string `json:"location"`
	RefereeID *string `json:"refreeid"`

	// Referee operation.
	Type   RefereeEditType `json:"type"`
	Result *MatchResult    `json:"result"`
}

// MatchService drives the classic match lifecycle: creation from an
// accepted challenge, the coach scheduling negotiation, the referee
// invite response and the referee match-day operations.
type MatchService interface {
	CreateFromChallenge(ctx context.Context, challenge *models.Notification) error
	HandleRefereeResponse(ctx context.Context, response *models.Notification) error
	UpdateMatch(ctx context.Context, callerID, matchID string, req *UpdateMatchRequest) error
	CancelMatch(ctx context.Context, callerID, matchID string) error
}

type matchService struct {
	users    repositories.UserRepository
	teams    repositories.TeamRepository
	members  repositories.MemberRepository
	matches  repositories.MatchRepository
	notifier Notifier
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewMatchService(
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	members repositories.MemberRepository,
	matches repositories.MatchRepository,
	notifier Notifier,
	clock clockwork.Clock,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		users:    users,
		teams:    teams,
		members:  members,
		matches:  matches,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// CreateFromChallenge reacts to an accepted match_chalenge
// notification. The new match reuses the notification id, which makes
// a double-fired reaction a no-op. Failures are answered with info
// notifications to the teams, never with errors.
func (s *matchService) CreateFromChallenge(ctx context.Context, challenge *models.Notification) error {
	fromID := challenge.FromID
	toID := challenge.ToID

	if fromID == toID {
		return s.notifier.Info(ctx, toID, fromID, "Match Challenge Declined",
			"You can't challenge your own team.")
	}

	matchID := challenge.ID
	if _, err := s.matches.GetByID(ctx, matchID); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrMatchNotFound) {
		return fmt.Errorf("checking match: %w", err)
	}

	team1, err := s.teams.GetByID(ctx, fromID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return s.notifier.Info(ctx, toID, toID, "Match Challenge Declined",
				"The challenger team does not exist.")
		}
		return fmt.Errorf("loading challenger team: %w", err)
	}
	team2, err := s.teams.GetByID(ctx, toID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return s.notifier.Info(ctx, fromID, fromID, "Match Challenge Declined",
				"The Request Does Not Complete. Please Try Again.")
		}
		return fmt.Errorf("loading challenged team: %w", err)
	}

	now := s.clock.Now().UTC()
	match := &models.Match{
		ID:        matchID,
		Team1:     models.TeamMatch{ID: fromID},
		Team2:     models.TeamMatch{ID: toID},
		Referee:   models.MatchReferee{},
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.MatchStatusCoachsEdit,
		Type:      models.MatchTypeClassic,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return fmt.Errorf("creating match: %w", err)
	}

	if err := s.notifier.Info(ctx, toID, fromID, "Match Challenge Accepted",
		fmt.Sprintf("%s Team has accepted your match challenge.", team2.TeamName)); err != nil {
		return err
	}
	return s.notifier.Info(ctx, fromID, toID, "Match Created",
		fmt.Sprintf("The match with Team %s has been created.", team1.TeamName))
}

// HandleRefereeResponse reacts to an answered refree_invite
// notification. Any failed check is a silent no-op: the invite simply
// stops mattering.
func (s *matchService) HandleRefereeResponse(ctx context.Context, response *models.Notification) error {
	matchID := response.FromID
	refereeID := response.ToID

	referee, err := s.users.GetByID(ctx, refereeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("loading referee: %w", err)
	}
	if referee.AccountType != models.AccountTypeReferee {
		return nil
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil
		}
		return fmt.Errorf("loading match: %w", err)
	}
	if match.Referee.ID == nil || *match.Referee.ID != refereeID {
		return nil
	}
	if match.Status != models.MatchStatusRefereeWaiting {
		return nil
	}

	switch {
	case response.Action != nil && *response.Action == models.ActionDecline:
		fields := map[string]interface{}{
			"refree": models.MatchReferee{},
			"status": models.MatchStatusCoachsEdit,
		}
		if err := s.matches.Update(ctx, matchID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
		if err := s.notifier.Info(ctx, matchID, match.Team1.ID, "Refree Invite Declined",
			"The refree has declined the invite."); err != nil {
			return err
		}
		return s.notifier.Info(ctx, matchID, match.Team2.ID, "Refree Invite Declined",
			"The refree has declined the invite.")

	case response.Action != nil && *response.Action == models.ActionAccept:
		fields := map[string]interface{}{
			"refree": models.MatchReferee{ID: &refereeID, IsAgreed: true},
			"status": models.MatchStatusPending,
		}
		if err := s.matches.Update(ctx, matchID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
		if err := s.notifier.Info(ctx, matchID, refereeID, "Match Added",
			"The match has been added to your profile."); err != nil {
			return err
		}
		if err := s.notifier.Info(ctx, matchID, match.Team1.ID, "Refree Invite Accepted",
			"The refree has accepted the invite."); err != nil {
			return err
		}
		return s.notifier.Info(ctx, matchID, match.Team2.ID, "Refree Invite Accepted",
			"The refree has accepted the invite.")
	}
	return nil
}

// UpdateMatch is the coach and referee edit entry point. The coach
// branch runs the scheduling negotiation; when both coaches converge
// on the same (referee, startIn, location) proposal the match moves to
// refree_waiting and the referee gets the invite. The referee branch
// runs the match-day operations.
func (s *matchService) UpdateMatch(ctx context.Context, callerID, matchID string, req *UpdateMatchRequest) error {
	if matchID == "" || req == nil {
		return ErrMissingParameters
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("loading match: %w", err)
	}
	if match.Type != models.MatchTypeClassic {
		return ErrMatchNotClassic
	}

	team1, err := s.teams.GetByID(ctx, match.Team1.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team1: %w", err)
	}
	team2, err := s.teams.GetByID(ctx, match.Team2.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team2: %w", err)
	}

	coach1, err := s.isTeamCoach(ctx, match.Team1.ID, callerID)
	if err != nil {
		return err
	}
	coach2, err := s.isTeamCoach(ctx, match.Team2.ID, callerID)
	if err != nil {
		return err
	}

	if match.Status.Terminal() {
		return ErrMatchAlreadyOver
	}
	if (match.Status == models.MatchStatusInProgress || match.Status == models.MatchStatusPending) &&
		match.Referee.IsAgreed && (match.Referee.ID == nil || *match.Referee.ID != callerID) {
		return ErrMatchRefereeOnly
	}
	if match.Status == models.MatchStatusRefereeWaiting {
		return ErrMatchAwaitingReferee
	}
	if match.Status == models.MatchStatusCoachsEdit && !coach1 && !coach2 {
		return ErrMatchCoachesOnly
	}

	if match.Status == models.MatchStatusCoachsEdit {
		return s.applyCoachEdit(ctx, match, req, coach1, team1.TeamName, team2.TeamName)
	}
	return s.applyRefereeEdit(ctx, match, req, team1.TeamName, team2.TeamName)
}

func (s *matchService) isTeamCoach(ctx context.Context, teamID, uid string) (bool, error) {
	member, err := s.members.Get(ctx, teamID, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading member: %w", err)
	}
	return member.Role == models.MemberRoleCoach, nil
}

func (s *matchService) applyCoachEdit(ctx context.Context, match *models.Match, req *UpdateMatchRequest, editorIsCoach1 bool, team1Name, team2Name string) error {
	if req.StartIn == nil || req.Location == nil || req.RefereeID == nil {
		return ErrMissingParameters
	}

	referee, err := s.users.GetByID(ctx, *req.RefereeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading referee: %w", err)
	}
	if referee.AccountType != models.AccountTypeReferee {
		return ErrRefereeRequired
	}

	startIn := time.UnixMilli(*req.StartIn).UTC()
	if startIn.Before(s.clock.Now()) {
		return ErrStartNotInFuture
	}
	if !validLocation(*req.Location) {
		return ErrLocationInvalid
	}

	editorTeam, otherTeam := match.Team1, match.Team2
	editorKey, editorName := "team1", team1Name
	if !editorIsCoach1 {
		editorTeam, otherTeam = match.Team2, match.Team1
		editorKey, editorName = "team2", team2Name
	}

	sameProposal := match.Referee.ID != nil && *match.Referee.ID == *req.RefereeID &&
		match.StartIn != nil && match.StartIn.Equal(startIn) &&
		match.Location != nil && *match.Location == *req.Location

	if sameProposal && otherTeam.IsAgreed {
		// Both coaches converged: invite the referee before flipping
		// the status so a lost second write still leaves an invite out.
		if err := s.notifier.Send(ctx, match.ID, *req.RefereeID, "Refree Invite",
			fmt.Sprintf("You have invited to a Match as Refree, Between '%s' And '%s' at %s.",
				team1Name, team2Name, startIn.Format(time.RFC1123)),
			models.NotificationTypeRefereeInvite); err != nil {
			return err
		}
		fields := map[string]interface{}{
			editorKey: models.TeamMatch{ID: editorTeam.ID, IsAgreed: true},
			"status":  models.MatchStatusRefereeWaiting,
		}
		if err := s.matches.Update(ctx, match.ID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
		return s.notifier.Info(ctx, match.ID, otherTeam.ID, "Match Details Updated",
			fmt.Sprintf("The match details have been acceptd by the Team %s Coach.", editorName))
	}

	// New proposal: editor agrees, the other coach's agreement resets.
	fields := map[string]interface{}{
		"team1":    models.TeamMatch{ID: match.Team1.ID, IsAgreed: editorIsCoach1},
		"team2":    models.TeamMatch{ID: match.Team2.ID, IsAgreed: !editorIsCoach1},
		"refree":   models.MatchReferee{ID: req.RefereeID},
		"startIn":  startIn,
		"location": *req.Location,
		"status":   models.MatchStatusCoachsEdit,
	}
	if err := s.matches.Update(ctx, match.ID, fields); err != nil {
		return fmt.Errorf("updating match: %w", err)
	}
	return s.notifier.Info(ctx, match.ID, otherTeam.ID, "Match Details Updated",
		fmt.Sprintf("The match details have been updated by the %s Coach.", editorName))
}

func (s *matchService) applyRefereeEdit(ctx context.Context, match *models.Match, req *UpdateMatchRequest, team1Name, team2Name string) error {
	if match.Status == models.MatchStatusPending &&
		req.Type != RefereeSetInProgress && req.Type != RefereeCancelMatch {
		return ErrMatchPendingRestricted
	}

	zero := 0
	switch req.Type {
	case RefereeSetInProgress:
		fields := map[string]interface{}{
			"status":  models.MatchStatusInProgress,
			"startIn": s.clock.Now().UTC(),
			"team1":   models.TeamMatch{ID: match.Team1.ID, Score: &zero, IsAgreed: true},
			"team2":   models.TeamMatch{ID: match.Team2.ID, Score: &zero, IsAgreed: true},
		}
		if err := s.matches.Update(ctx, match.ID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
	case RefereeEditResult:
		if req.Result == nil {
			return ErrResultRequired
		}
		fields := map[string]interface{}{
			"team1":  models.TeamMatch{ID: match.Team1.ID, Score: &req.Result.Team1, IsAgreed: true},
			"team2":  models.TeamMatch{ID: match.Team2.ID, Score: &req.Result.Team2, IsAgreed: true},
			"refree": models.MatchReferee{ID: match.Referee.ID, IsAgreed: true},
		}
		if err := s.matches.Update(ctx, match.ID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
	case RefereeCancelMatch:
		fields := map[string]interface{}{"status": models.MatchStatusCanceled}
		if err := s.matches.Update(ctx, match.ID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
	case RefereeEndMatch:
		if match.Team1.Score == nil || match.Team2.Score == nil {
			return ErrScoresIncomplete
		}
		fields := map[string]interface{}{
			"status":  models.MatchStatusFinish,
			"endedAt": s.clock.Now().UTC(),
		}
		if err := s.matches.Update(ctx, match.ID, fields); err != nil {
			return fmt.Errorf("updating match: %w", err)
		}
	default:
		return ErrMissingParameters
	}

	if err := s.notifier.Info(ctx, match.ID, match.Team1.ID, "Match Details Updated",
		"The match details have been updated by the refree."); err != nil {
		return err
	}
	if err := s.notifier.Info(ctx, match.ID, match.Team2.ID, "Match Details Updated",
		"The match details have been updated by the refree."); err != nil {
		return err
	}

	if req.Type == RefereeEndMatch {
		return s.announceResult(ctx, match, team1Name, team2Name)
	}
	return nil
}

// announceResult sends win, lose or draw notifications based on the
// scores the match carried when the referee ended it. A 0-0 finish is
// announced as a draw like any other level score.
func (s *matchService) announceResult(ctx context.Context, match *models.Match, team1Name, team2Name string) error {
	score1, score2 := *match.Team1.Score, *match.Team2.Score
	switch {
	case score1 > score2:
		return s.winLosePair(ctx, match.ID, match.Team1.ID, team1Name, match.Team2.ID, team2Name)
	case score1 < score2:
		return s.winLosePair(ctx, match.ID, match.Team2.ID, team2Name, match.Team1.ID, team1Name)
	default:
		drawMsg := fmt.Sprintf("The match between %s and %s has ended in a draw.", team1Name, team2Name)
		if err := s.notifier.Info(ctx, match.ID, match.Team1.ID, "Match Finished", drawMsg); err != nil {
			return err
		}
		return s.notifier.Info(ctx, match.ID, match.Team2.ID, "Match Finished", drawMsg)
	}
}

func (s *matchService) winLosePair(ctx context.Context, matchID, winnerID, winnerName, loserID, loserName string) error {
	if err := s.notifier.Info(ctx, matchID, winnerID, "Match Finished",
		fmt.Sprintf("Congratulation! Your team %s has won the match.", winnerName)); err != nil {
		return err
	}
	return s.notifier.Info(ctx, matchID, loserID, "Match Finished",
		fmt.Sprintf("Your team %s has lost the match.", loserName))
}

// CancelMatch lets either coach cancel a classic match that has not
// started. A pending cancellation also tells the referee.
func (s *matchService) CancelMatch(ctx context.Context, callerID, matchID string) error {
	if matchID == "" {
		return ErrMissingParameters
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("loading match: %w", err)
	}
	if match.Type != models.MatchTypeClassic {
		return ErrMatchNotClassic
	}

	team1, err := s.teams.GetByID(ctx, match.Team1.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team1: %w", err)
	}
	team2, err := s.teams.GetByID(ctx, match.Team2.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team2: %w", err)
	}

	coach1, err := s.isTeamCoach(ctx, match.Team1.ID, callerID)
	if err != nil {
		return err
	}
	coach2, err := s.isTeamCoach(ctx, match.Team2.ID, callerID)
	if err != nil {
		return err
	}
	if !coach1 && !coach2 {
		return ErrNotCoachOfMatch
	}

	if match.Status.Terminal() {
		return ErrMatchAlreadyOver
	}
	if match.Status == models.MatchStatusInProgress {
		return ErrMatchInProgressLocked
	}

	if err := s.matches.Update(ctx, matchID, map[string]interface{}{
		"status": models.MatchStatusCanceled,
	}); err != nil {
		return fmt.Errorf("updating match: %w", err)
	}

	cancelerName, otherTeamID := team1.TeamName, match.Team2.ID
	if !coach1 {
		cancelerName, otherTeamID = team2.TeamName, match.Team1.ID
	}
	msg := fmt.Sprintf("The match has been canceled by the %s Coach.", cancelerName)
	if err := s.notifier.Info(ctx, matchID, otherTeamID, "Match Canceled", msg); err != nil {
		return err
	}
	if match.Status == models.MatchStatusPending && match.Referee.ID != nil {
		return s.notifier.Info(ctx, matchID, *match.Referee.ID, "Match Canceled", msg)
	}
	return nil
}
