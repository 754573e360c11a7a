package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
)

// MembershipService manages the team roster. AcceptJoinRequest and
// AcceptTeamInvite are reaction entry points: eligibility failures are
// answered with notifications, never with errors.
type MembershipService interface {
	AcceptJoinRequest(ctx context.Context, userID, teamID string) error
	AcceptTeamInvite(ctx context.Context, teamID, userID string) error
	MemberAdded(ctx context.Context, teamID, uid string, role models.MemberRole) error
	MemberRemoved(ctx context.Context, teamID, uid string) error
}

type membershipService struct {
	users    repositories.UserRepository
	teams    repositories.TeamRepository
	members  repositories.MemberRepository
	notifier Notifier
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewMembershipService(
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	members repositories.MemberRepository,
	notifier Notifier,
	clock clockwork.Clock,
	logger *slog.Logger,
) MembershipService {
	return &membershipService{
		users:    users,
		teams:    teams,
		members:  members,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// AcceptJoinRequest handles an accepted request_to_join_team
// notification: the user asked, the team coach accepted.
func (s *membershipService) AcceptJoinRequest(ctx context.Context, userID, teamID string) error {
	return s.addPlayerToTeam(ctx, userID, teamID, "Request Declined")
}

// AcceptTeamInvite handles an accepted invite_to_team notification:
// the team asked, the user accepted.
func (s *membershipService) AcceptTeamInvite(ctx context.Context, teamID, userID string) error {
	return s.addPlayerToTeam(ctx, userID, teamID, "Invite Declined")
}

// addPlayerToTeam runs the shared eligibility checks and adds the user
// to the roster. An ineligible user gets a pair of notifications (one
// to the user, one to the team) explaining the refusal.
func (s *membershipService) addPlayerToTeam(ctx context.Context, userID, teamID, declineTitle string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("loading user: %w", err)
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil
		}
		return fmt.Errorf("loading team: %w", err)
	}

	if user.AccountType != models.AccountTypePlayer {
		return s.declinePair(ctx, declineTitle, userID, teamID,
			fmt.Sprintf("You can't join the team %s because your account type is not player.", team.TeamName),
			fmt.Sprintf("%s can't join the team because his account type is not player.", user.Username))
	}

	memberships, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing user memberships: %w", err)
	}
	if len(memberships) > 0 {
		return s.declinePair(ctx, declineTitle, userID, teamID,
			fmt.Sprintf("You can't join the team %s because you are already in a team.", team.TeamName),
			fmt.Sprintf("%s can't join the team because he is already in a team.", user.Username))
	}

	if team.Blacklisted(userID) {
		return s.declinePair(ctx, declineTitle, userID, teamID,
			fmt.Sprintf("You can't join the team %s because you are in the team blackList.", team.TeamName),
			fmt.Sprintf("%s can't join the team because he is in the team blackList.", user.Username))
	}

	member := &models.Member{
		TeamID:   teamID,
		UID:      userID,
		Role:     models.MemberRoleMember,
		JoinedAt: s.clock.Now().UTC(),
	}
	if err := s.members.Put(ctx, member); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	return s.MemberAdded(ctx, teamID, userID, models.MemberRoleMember)
}

func (s *membershipService) declinePair(ctx context.Context, title, userID, teamID, userMsg, teamMsg string) error {
	if err := s.notifier.Info(ctx, teamID, userID, title, userMsg); err != nil {
		return err
	}
	return s.notifier.Info(ctx, userID, teamID, title, teamMsg)
}

// MemberAdded announces a roster addition to the whole team. A member
// whose account type no longer matches the role is skipped silently;
// the roster entry itself is left alone.
func (s *membershipService) MemberAdded(ctx context.Context, teamID, uid string, role models.MemberRole) error {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.logger.Info("member added for unknown user", "uid", uid, "team_id", teamID)
			return nil
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if (role == models.MemberRoleMember && user.AccountType != models.AccountTypePlayer) ||
		(role == models.MemberRoleCoach && user.AccountType != models.AccountTypeCoach) {
		s.logger.Info("member has incorrect account type for role",
			"uid", uid, "team_id", teamID, "role", role, "account_type", user.AccountType)
		return nil
	}

	name := user.Username
	if name == "" {
		name = "A"
	}
	return s.notifier.NotifyTeamMembers(ctx, teamID, "New Team Member Joined",
		fmt.Sprintf("%s new %s has joined the team.", name, role))
}

// MemberRemoved announces a roster removal to the remaining members.
func (s *membershipService) MemberRemoved(ctx context.Context, teamID, uid string) error {
	name := "A"
	if user, err := s.users.GetByID(ctx, uid); err == nil {
		name = user.Username
	}
	return s.notifier.NotifyTeamMembers(ctx, teamID, "Team Member Removed",
		fmt.Sprintf("%s member has been removed from the team.", name))
}
