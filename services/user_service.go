package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
	"github.com/malaebhub/malaeb-server/storage"
)

// CreateUserRequest carries the profile fields submitted on first
// sign-in. The username is normalized rather than rejected.
type CreateUserRequest struct {
	Username  string  `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
}

// UpdateUserRequest carries optional profile fields. At least one must
// be set. Unlike creation, an invalid username here is rejected.
type UpdateUserRequest struct {
	Username     *string        `json:"username"`
	FirstName    *string        `json:"firstName"`
	LastName     *string        `json:"lastName"`
	Bio          *string        `json:"bio"`
	Avatar       *string        `json:"avatar"`
	Birthday     *time.Time     `json:"birthday"`
	Gender       *models.Gender `json:"gender"`
	Address      *string        `json:"address"`
	PhoneNumbers []string       `json:"phoneNumbers"`
}

// UserService manages the user profile and the account type
// transitions that gate every other role in the system.
type UserService interface {
	Create(ctx context.Context, callerID string, req *CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, callerID string, req *UpdateUserRequest) error
	ChangeAccountType(ctx context.Context, callerID string, accountType models.AccountType) error
	UploadAvatar(ctx context.Context, callerID, filename, contentType string, file io.Reader) (string, error)
}

type userService struct {
	users       repositories.UserRepository
	members     repositories.MemberRepository
	matches     repositories.MatchRepository
	tournaments repositories.TournamentRepository
	uploader    storage.FileUploader
	clock       clockwork.Clock
}

func NewUserService(
	users repositories.UserRepository,
	members repositories.MemberRepository,
	matches repositories.MatchRepository,
	tournaments repositories.TournamentRepository,
	uploader storage.FileUploader,
	clock clockwork.Clock,
) UserService {
	return &userService{
		users:       users,
		members:     members,
		matches:     matches,
		tournaments: tournaments,
		uploader:    uploader,
		clock:       clock,
	}
}

// Create registers the caller's profile. The requested username is
// normalized and suffixed until unique, so creation never fails on a
// name collision.
func (s *userService) Create(ctx context.Context, callerID string, req *CreateUserRequest) (*models.User, error) {
	if req == nil || req.Username == "" {
		return nil, ErrMissingParameters
	}

	if _, err := s.users.GetByID(ctx, callerID); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("checking user: %w", err)
	}

	username := normalizeUsername(req.Username)
	for {
		taken, err := s.users.UsernameTaken(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("checking username: %w", err)
		}
		if !taken {
			break
		}
		username += randomSuffix()
		if len(username) > 30 {
			username = username[len(username)-30:]
		}
	}

	user := &models.User{
		ID:          callerID,
		Username:    username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Avatar:      req.Avatar,
		AccountType: models.AccountTypeUser,
		Gender:      models.GenderMale,
		JoinDate:    s.clock.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Update edits the caller's profile.
func (s *userService) Update(ctx context.Context, callerID string, req *UpdateUserRequest) error {
	if req == nil {
		return ErrMissingParameters
	}
	if req.Username == nil && req.FirstName == nil && req.LastName == nil && req.Bio == nil &&
		req.Avatar == nil && req.Gender == nil && req.Address == nil &&
		req.Birthday == nil && req.PhoneNumbers == nil {
		return ErrNoFieldsToUpdate
	}

	if _, err := s.users.GetByID(ctx, callerID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}

	if req.Username != nil {
		if !validName(*req.Username) {
			return ErrUsernameInvalid
		}
		taken, err := s.users.UsernameTaken(ctx, *req.Username)
		if err != nil {
			return fmt.Errorf("checking username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
	}

	fields := map[string]interface{}{}
	if req.Username != nil {
		fields["username"] = *req.Username
	}
	if req.FirstName != nil {
		fields["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["lastName"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.Birthday != nil {
		fields["birthday"] = *req.Birthday
	}
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.PhoneNumbers != nil {
		fields["phoneNumbers"] = req.PhoneNumbers
	}
	if err := s.users.Update(ctx, callerID, fields); err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// ChangeAccountType switches the caller's role. Leaving a role is only
// allowed once its obligations are settled: no team membership for
// coaches and players, no open matches or tournament listings for
// referees, no open tournaments for managers.
func (s *userService) ChangeAccountType(ctx context.Context, callerID string, accountType models.AccountType) error {
	if accountType == "" {
		return ErrMissingParameters
	}
	if !accountType.Valid() {
		return ErrAccountTypeInvalid
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if user.AccountType == accountType {
		return ErrAccountTypeUnchanged
	}

	switch user.AccountType {
	case models.AccountTypeCoach, models.AccountTypePlayer:
		memberships, err := s.members.ListByUser(ctx, callerID)
		if err != nil {
			return fmt.Errorf("listing user memberships: %w", err)
		}
		if len(memberships) > 0 {
			return ErrStillTeamMember
		}
	case models.AccountTypeReferee:
		matches, err := s.matches.ListActiveByReferee(ctx, callerID)
		if err != nil {
			return fmt.Errorf("listing refereed matches: %w", err)
		}
		if len(matches) > 0 {
			return ErrRefereeHasActiveMatches
		}
		tournaments, err := s.tournaments.ListByReferee(ctx, callerID)
		if err != nil {
			return fmt.Errorf("listing refereed tournaments: %w", err)
		}
		if len(tournaments) > 0 {
			return ErrRefereeListedInTournament
		}
	case models.AccountTypeTournamentManager:
		tournaments, err := s.tournaments.ListActiveByManager(ctx, callerID)
		if err != nil {
			return fmt.Errorf("listing managed tournaments: %w", err)
		}
		if len(tournaments) > 0 {
			return ErrManagerHasActiveTournament
		}
	}

	if err := s.users.Update(ctx, callerID, map[string]interface{}{
		"accountType": accountType,
	}); err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UploadAvatar stores an avatar image and points the user record at it.
func (s *userService) UploadAvatar(ctx context.Context, callerID, filename, contentType string, file io.Reader) (string, error) {
	if filename == "" {
		return "", ErrMissingParameters
	}
	if _, err := s.users.GetByID(ctx, callerID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	key := fmt.Sprintf("users/%s/avatar%s", callerID, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}

	if err := s.users.Update(ctx, callerID, map[string]interface{}{
		"avatar": result.Location,
	}); err != nil {
		return "", fmt.Errorf("updating user: %w", err)
	}
	return result.Location, nil
}
