package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
	"github.com/malaebhub/malaeb-server/storage"
)

// CreateTeamRequest carries the fields a coach submits when founding a
// team.
type CreateTeamRequest struct {
	TeamName        string `json:"teamName"`
	TeamLogo        string `json:"teamLogo"`
	TeamDescription string `json:"teamDescription"`
}

// UpdateTeamRequest carries the optional team profile fields. At least
// one must be set.
type UpdateTeamRequest struct {
	TeamName        *string `json:"teamName"`
	TeamLogo        *string `json:"teamLogo"`
	TeamDescription *string `json:"teamDescription"`
}

// TeamService manages the team record and the coach seat.
type TeamService interface {
	Create(ctx context.Context, callerID string, req *CreateTeamRequest) (string, error)
	Update(ctx context.Context, callerID, teamID string, req *UpdateTeamRequest) error
	ChangeCoach(ctx context.Context, callerID, memberID, teamID string) error
	LeaveForCoach(ctx context.Context, callerID, teamID string) error
	UploadLogo(ctx context.Context, callerID, teamID, filename, contentType string, file io.Reader) (string, error)
}

type teamService struct {
	users      repositories.UserRepository
	teams      repositories.TeamRepository
	members    repositories.MemberRepository
	matches    repositories.MatchRepository
	membership MembershipService
	notifier   Notifier
	uploader   storage.FileUploader
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewTeamService(
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	members repositories.MemberRepository,
	matches repositories.MatchRepository,
	membership MembershipService,
	notifier Notifier,
	uploader storage.FileUploader,
	clock clockwork.Clock,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		users:      users,
		teams:      teams,
		members:    members,
		matches:    matches,
		membership: membership,
		notifier:   notifier,
		uploader:   uploader,
		clock:      clock,
		logger:     logger,
	}
}

// Create founds a team with the caller as its coach. A coach can run
// only one team at a time.
func (s *teamService) Create(ctx context.Context, callerID string, req *CreateTeamRequest) (string, error) {
	if req == nil || req.TeamName == "" || req.TeamLogo == "" || req.TeamDescription == "" {
		return "", ErrMissingParameters
	}
	if !validName(req.TeamName) {
		return "", ErrTeamNameInvalid
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("loading user: %w", err)
	}
	if caller.AccountType != models.AccountTypeCoach {
		return "", ErrUserNotCoach
	}

	memberships, err := s.members.ListByUser(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("listing user memberships: %w", err)
	}
	if len(memberships) > 0 {
		return "", ErrCoachAlreadyInTeam
	}

	taken, err := s.teams.NameTaken(ctx, req.TeamName)
	if err != nil {
		return "", fmt.Errorf("checking team name: %w", err)
	}
	if taken {
		return "", ErrTeamNameTaken
	}

	now := s.clock.Now().UTC()
	team := &models.Team{
		TeamName:    req.TeamName,
		TeamLogo:    req.TeamLogo,
		Description: req.TeamDescription,
		BlackList:   []string{},
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	teamID, err := s.teams.Create(ctx, team)
	if err != nil {
		return "", fmt.Errorf("creating team: %w", err)
	}

	member := &models.Member{
		TeamID:   teamID,
		UID:      callerID,
		Role:     models.MemberRoleCoach,
		JoinedAt: now,
	}
	if err := s.members.Put(ctx, member); err != nil {
		return "", fmt.Errorf("adding coach member: %w", err)
	}
	if err := s.membership.MemberAdded(ctx, teamID, callerID, models.MemberRoleCoach); err != nil {
		s.logger.Error("announcing coach member", "error", err, "team_id", teamID)
	}
	return teamID, nil
}

// Update edits the team profile. Only the team's coach can call it.
func (s *teamService) Update(ctx context.Context, callerID, teamID string, req *UpdateTeamRequest) error {
	if teamID == "" || req == nil {
		return ErrMissingParameters
	}
	if req.TeamName == nil && req.TeamLogo == nil && req.TeamDescription == nil {
		return ErrNoFieldsToUpdate
	}
	if req.TeamName != nil && !validName(*req.TeamName) {
		return ErrTeamNameInvalid
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

	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team: %w", err)
	}

	if err := s.requireTeamCoach(ctx, teamID, callerID); err != nil {
		return err
	}

	if req.TeamName != nil {
		taken, err := s.teams.NameTaken(ctx, *req.TeamName)
		if err != nil {
			return fmt.Errorf("checking team name: %w", err)
		}
		if taken {
			return ErrTeamNameTaken
		}
	}

	fields := map[string]interface{}{"updatedAt": s.clock.Now().UTC()}
	if req.TeamName != nil {
		fields["teamName"] = *req.TeamName
	}
	if req.TeamLogo != nil {
		fields["teamLogo"] = *req.TeamLogo
	}
	if req.TeamDescription != nil {
		fields["description"] = *req.TeamDescription
	}
	if err := s.teams.Update(ctx, teamID, fields); err != nil {
		return fmt.Errorf("updating team: %w", err)
	}
	return nil
}

// ChangeCoach swaps the coach seat with another roster member. The
// member records are updated before the user records so a crash in
// between leaves the roster authoritative.
func (s *teamService) ChangeCoach(ctx context.Context, callerID, memberID, teamID string) error {
	if memberID == "" || teamID == "" {
		return ErrMissingParameters
	}
	if callerID == memberID {
		return ErrSameCoachAndMember
	}

	coachMember, err := s.members.Get(ctx, teamID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotTeamCoach
		}
		return fmt.Errorf("loading coach member: %w", err)
	}
	if coachMember.Role != models.MemberRoleCoach {
		return ErrNotTeamCoach
	}

	memberMember, err := s.members.Get(ctx, teamID, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("loading member: %w", err)
	}

	memberUser, err := s.users.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading member user: %w", err)
	}
	coachUser, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading coach user: %w", err)
	}

	coachMember.Role = models.MemberRoleMember
	memberMember.Role = models.MemberRoleCoach
	if err := s.members.Put(ctx, coachMember); err != nil {
		return fmt.Errorf("demoting coach: %w", err)
	}
	if err := s.members.Put(ctx, memberMember); err != nil {
		return fmt.Errorf("promoting member: %w", err)
	}

	if err := s.users.Update(ctx, callerID, map[string]interface{}{
		"accountType": models.AccountTypePlayer,
	}); err != nil {
		return fmt.Errorf("updating coach account type: %w", err)
	}
	if err := s.users.Update(ctx, memberID, map[string]interface{}{
		"accountType": models.AccountTypeCoach,
	}); err != nil {
		return fmt.Errorf("updating member account type: %w", err)
	}

	if err := s.notifier.Info(ctx, teamID, callerID, "Role Changed",
		"Your role has been changed to member."); err != nil {
		return err
	}
	if err := s.notifier.Info(ctx, teamID, memberID, "Role Changed",
		"Your role has been changed to coach."); err != nil {
		return err
	}
	return s.notifier.NotifyTeamMembers(ctx, teamID, "Role Changed",
		fmt.Sprintf("The roles of %s and %s have been changed, the new coach is %s.",
			coachUser.Username, memberUser.Username, memberUser.Username))
}

// LeaveForCoach disbands a team. Only allowed once the coach is alone
// on the roster and no match involving the team is still open. The
// team record itself is kept for history; only the roster entry goes.
func (s *teamService) LeaveForCoach(ctx context.Context, callerID, teamID string) error {
	if teamID == "" {
		return ErrMissingParameters
	}

	if err := s.requireTeamCoach(ctx, teamID, callerID); err != nil {
		return err
	}

	roster, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("listing team members: %w", err)
	}
	if len(roster) > 1 {
		return ErrTeamNotEmpty
	}

	active, err := s.matches.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("listing team matches: %w", err)
	}
	if len(active) > 0 {
		return ErrTeamHasActiveMatches
	}

	if err := s.members.Delete(ctx, teamID, callerID); err != nil {
		return fmt.Errorf("removing coach member: %w", err)
	}
	if err := s.membership.MemberRemoved(ctx, teamID, callerID); err != nil {
		s.logger.Error("announcing member removal", "error", err, "team_id", teamID)
	}

	return s.notifier.Info(ctx, teamID, callerID, "Team Deleted",
		"The team has been deleted.")
}

// UploadLogo stores a logo image and points the team record at it.
func (s *teamService) UploadLogo(ctx context.Context, callerID, teamID, filename, contentType string, file io.Reader) (string, error) {
	if teamID == "" || filename == "" {
		return "", ErrMissingParameters
	}
	if err := s.requireTeamCoach(ctx, teamID, callerID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("teams/%s/logo%s", teamID, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("uploading logo: %w", err)
	}

	if err := s.teams.Update(ctx, teamID, map[string]interface{}{
		"teamLogo":  result.Location,
		"updatedAt": s.clock.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("updating team: %w", err)
	}
	return result.Location, nil
}

func (s *teamService) requireTeamCoach(ctx context.Context, teamID, uid string) error {
	member, err := s.members.Get(ctx, teamID, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotTeamCoach
		}
		return fmt.Errorf("loading member: %w", err)
	}
	if member.Role != models.MemberRoleCoach {
		return ErrNotTeamCoach
	}
	return nil
}
