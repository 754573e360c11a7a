package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
)

// TournamentService manages tournament participation. The Accept*
// methods are reaction entry points for the notification dispatcher;
// the Leave and Remove methods are caller-facing procedures.
type TournamentService interface {
	AcceptTeamJoinRequest(ctx context.Context, teamID, tournamentID string) error
	AcceptTeamInvite(ctx context.Context, tournamentID, teamID string) error
	AcceptRefereeInvite(ctx context.Context, tournamentID, refereeID string) error
	LeaveForTeam(ctx context.Context, callerID, tournamentID, teamID string) error
	LeaveForReferee(ctx context.Context, callerID, tournamentID string) error
	Remove(ctx context.Context, callerID, tournamentID string) error
}

type tournamentService struct {
	users       repositories.UserRepository
	teams       repositories.TeamRepository
	members     repositories.MemberRepository
	tournaments repositories.TournamentRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewTournamentService(
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	members repositories.MemberRepository,
	tournaments repositories.TournamentRepository,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		users:       users,
		teams:       teams,
		members:     members,
		tournaments: tournaments,
		notifier:    notifier,
		logger:      logger,
	}
}

// AcceptTeamJoinRequest handles an accepted request_to_join_tournament
// notification: the team asked, the manager accepted.
func (s *tournamentService) AcceptTeamJoinRequest(ctx context.Context, teamID, tournamentID string) error {
	return s.addTeam(ctx, teamID, tournamentID, "Request Declined", "Request Accepted")
}

// AcceptTeamInvite handles an accepted invite_to_tournament
// notification: the manager asked, the team coach accepted.
func (s *tournamentService) AcceptTeamInvite(ctx context.Context, tournamentID, teamID string) error {
	return s.addTeam(ctx, teamID, tournamentID, "Invite Declined", "Invite Accepted")
}

// addTeam runs the shared capacity checks and adds the team to the
// participants list. Failed checks are answered with a notification
// pair, one to the team and one to the tournament manager.
func (s *tournamentService) addTeam(ctx context.Context, teamID, tournamentID, declineTitle, acceptTitle string) error {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil
		}
		return fmt.Errorf("loading tournament: %w", err)
	}
	if tournament.HasParticipant(teamID) {
		return nil
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil
		}
		return fmt.Errorf("loading team: %w", err)
	}

	roster, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("listing team members: %w", err)
	}
	if len(roster) < tournament.MinMembersInTeam {
		return s.declinePair(ctx, declineTitle, teamID, tournamentID,
			fmt.Sprintf("You can't join the tournament %s because your team members are less than the required number.", tournament.Name),
			fmt.Sprintf("The team %s can't join the tournament %s because the team members are less than the required number.", team.TeamName, tournament.Name))
	}
	if len(tournament.Participants) >= tournament.MaxParticipants {
		return s.declinePair(ctx, declineTitle, teamID, tournamentID,
			fmt.Sprintf("Your Team can't join the tournament %s because the tournament is full.", tournament.Name),
			fmt.Sprintf("The team %s can't join the tournament %s because the tournament is full", team.TeamName, tournament.Name))
	}

	participants := append(tournament.Participants, teamID)
	if err := s.tournaments.Update(ctx, tournamentID, map[string]interface{}{
		"participants": participants,
	}); err != nil {
		return fmt.Errorf("updating tournament: %w", err)
	}

	joined := fmt.Sprintf("Your team has been added to the tournament %s.", tournament.Name)
	if err := s.notifier.Info(ctx, tournamentID, teamID, acceptTitle, joined); err != nil {
		return err
	}
	return s.notifier.Info(ctx, teamID, tournamentID, "Team Added", joined)
}

func (s *tournamentService) declinePair(ctx context.Context, title, teamID, tournamentID, teamMsg, managerMsg string) error {
	if err := s.notifier.Info(ctx, tournamentID, teamID, title, teamMsg); err != nil {
		return err
	}
	return s.notifier.Info(ctx, teamID, tournamentID, title, managerMsg)
}

// AcceptRefereeInvite handles an accepted invite_referee_to_tournament
// notification. A user who is not a referee, or who is already listed,
// is skipped silently.
func (s *tournamentService) AcceptRefereeInvite(ctx context.Context, tournamentID, refereeID string) error {
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

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			s.logger.Info("tournament not found", "tournament_id", tournamentID)
			return nil
		}
		return fmt.Errorf("loading tournament: %w", err)
	}
	if tournament.HasReferee(refereeID) {
		s.logger.Info("refree is already in the tournament refree_ids",
			"tournament_id", tournamentID, "refree_id", refereeID)
		return nil
	}

	refereeIDs := append(tournament.RefereeIDs, refereeID)
	if err := s.tournaments.Update(ctx, tournamentID, map[string]interface{}{
		"refree_ids": refereeIDs,
	}); err != nil {
		return fmt.Errorf("updating tournament: %w", err)
	}

	if err := s.notifier.Info(ctx, tournamentID, refereeID, "Tournament Added",
		fmt.Sprintf("The tournament %s has been added to your profile.", tournament.Name)); err != nil {
		return err
	}
	return s.notifier.Info(ctx, refereeID, tournamentID, "Refree Invite Accepted",
		"The refree has accepted the invite.")
}

// LeaveForTeam removes the caller's team from a pending tournament.
func (s *tournamentService) LeaveForTeam(ctx context.Context, callerID, tournamentID, teamID string) error {
	if tournamentID == "" || teamID == "" {
		return ErrMissingParameters
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if caller.AccountType != models.AccountTypeCoach {
		return ErrUserNotCoach
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team: %w", err)
	}

	member, err := s.members.Get(ctx, teamID, callerID)
	if err != nil && !errors.Is(err, repositories.ErrMemberNotFound) {
		return fmt.Errorf("loading member: %w", err)
	}
	if member == nil || member.Role != models.MemberRoleCoach {
		return ErrNotTeamCoach
	}

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("loading tournament: %w", err)
	}
	if !tournament.HasParticipant(teamID) {
		return ErrTeamNotInTournament
	}
	if tournament.Status != models.TournamentStatusPending {
		return ErrTournamentNotPending
	}

	participants := make([]string, 0, len(tournament.Participants))
	for _, id := range tournament.Participants {
		if id != teamID {
			participants = append(participants, id)
		}
	}
	if err := s.tournaments.Update(ctx, tournamentID, map[string]interface{}{
		"participants": participants,
	}); err != nil {
		return fmt.Errorf("updating tournament: %w", err)
	}

	msg := fmt.Sprintf("The team %s has left the tournament %s.", team.TeamName, tournament.Name)
	if err := s.notifier.Info(ctx, teamID, tournamentID, "Team Left", msg); err != nil {
		return err
	}
	return s.notifier.Info(ctx, tournamentID, teamID, "Tournament Left", msg)
}

// LeaveForReferee removes the caller from a pending tournament's
// referee list.
func (s *tournamentService) LeaveForReferee(ctx context.Context, callerID, tournamentID string) error {
	if tournamentID == "" {
		return ErrMissingParameters
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if caller.AccountType != models.AccountTypeReferee {
		return ErrUserNotReferee
	}

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("loading tournament: %w", err)
	}
	if !tournament.HasReferee(callerID) {
		return ErrRefereeNotInTournament
	}
	if tournament.Status != models.TournamentStatusPending {
		return ErrTournamentNotPending
	}

	refereeIDs := make([]string, 0, len(tournament.RefereeIDs))
	for _, id := range tournament.RefereeIDs {
		if id != callerID {
			refereeIDs = append(refereeIDs, id)
		}
	}
	if err := s.tournaments.Update(ctx, tournamentID, map[string]interface{}{
		"refree_ids": refereeIDs,
	}); err != nil {
		return fmt.Errorf("updating tournament: %w", err)
	}

	msg := fmt.Sprintf("The referee %s has left the tournament %s.", caller.Username, tournament.Name)
	if err := s.notifier.Info(ctx, callerID, tournamentID, "Referee Left", msg); err != nil {
		return err
	}
	return s.notifier.Info(ctx, tournamentID, callerID, "Tournament Left", msg)
}

// Remove deletes a pending tournament and tells everyone involved.
func (s *tournamentService) Remove(ctx context.Context, callerID, tournamentID string) error {
	if tournamentID == "" {
		return ErrMissingParameters
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if caller.AccountType != models.AccountTypeTournamentManager {
		return ErrUserNotManager
	}

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("loading tournament: %w", err)
	}
	if tournament.ManagerID != callerID {
		return ErrNotTournamentManager
	}
	if tournament.Status != models.TournamentStatusPending {
		return ErrTournamentNotPending
	}

	if err := s.tournaments.Delete(ctx, tournamentID); err != nil {
		return fmt.Errorf("deleting tournament: %w", err)
	}

	if err := s.notifier.Info(ctx, tournamentID, callerID, "Tournament Removed",
		fmt.Sprintf("The tournament %s has been removed.", tournament.Name)); err != nil {
		return err
	}
	cancelled := fmt.Sprintf("The tournament %s has been cancelled.", tournament.Name)
	for _, refereeID := range tournament.RefereeIDs {
		if err := s.notifier.Info(ctx, tournamentID, refereeID, "Tournament Cancelled", cancelled); err != nil {
			return err
		}
	}
	for _, teamID := range tournament.Participants {
		if err := s.notifier.Info(ctx, tournamentID, teamID, "Tournament Cancelled", cancelled); err != nil {
			return err
		}
	}
	return nil
}
