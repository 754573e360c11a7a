package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaebhub/malaeb-server/models"
)

func TestUserCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("profile starts as a plain user", func(t *testing.T) {
		env := newTestEnv()
		user, err := env.users.Create(ctx, "u1", &CreateUserRequest{Username: "new_player"})
		require.NoError(t, err)

		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "new_player", user.Username)
		assert.Equal(t, models.AccountTypeUser, user.AccountType)
		assert.Equal(t, models.GenderMale, user.Gender)
		assert.Equal(t, env.clock.Now().UTC(), user.JoinDate)
		assert.Contains(t, env.store.users, "u1")
	})

	t.Run("username is normalized instead of rejected", func(t *testing.T) {
		env := newTestEnv()
		user, err := env.users.Create(ctx, "u1", &CreateUserRequest{Username: "New Player!!"})
		require.NoError(t, err)
		assert.Equal(t, "newplayer", user.Username)
	})

	t.Run("taken username gets a suffix", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u0", "new_player", models.AccountTypeUser)
		user, err := env.users.Create(ctx, "u1", &CreateUserRequest{Username: "new_player"})
		require.NoError(t, err)

		assert.NotEqual(t, "new_player", user.Username)
		assert.True(t, strings.HasPrefix(user.Username, "new_player"))
		assert.LessOrEqual(t, len(user.Username), 30)
	})

	t.Run("existing profile cannot be created again", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		_, err := env.users.Create(ctx, "u1", &CreateUserRequest{Username: "other_name"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("username is required", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.users.Create(ctx, "u1", &CreateUserRequest{})
		assert.ErrorIs(t, err, ErrMissingParameters)
	})
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("username change enforces the name rules", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		bad := "Bad Name"
		err := env.users.Update(ctx, "u1", &UpdateUserRequest{Username: &bad})
		assert.ErrorIs(t, err, ErrUsernameInvalid)
	})

	t.Run("username change rejects a taken name", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		env.store.addUser("u2", "other_player", models.AccountTypeUser)
		taken := "other_player"
		err := env.users.Update(ctx, "u1", &UpdateUserRequest{Username: &taken})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("at least one field is required", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		err := env.users.Update(ctx, "u1", &UpdateUserRequest{})
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})

	t.Run("valid rename lands in the store", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		name := "better_name"
		require.NoError(t, env.users.Update(ctx, "u1", &UpdateUserRequest{Username: &name}))
		assert.Equal(t, "better_name", env.store.users["u1"].Username)
	})
}

func TestChangeAccountType(t *testing.T) {
	ctx := context.Background()

	t.Run("plain user becomes a coach", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		require.NoError(t, env.users.ChangeAccountType(ctx, "u1", models.AccountTypeCoach))
		assert.Equal(t, models.AccountTypeCoach, env.store.users["u1"].AccountType)
	})

	t.Run("same type is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		err := env.users.ChangeAccountType(ctx, "u1", models.AccountTypeUser)
		assert.ErrorIs(t, err, ErrAccountTypeUnchanged)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("u1", "new_player", models.AccountTypeUser)
		err := env.users.ChangeAccountType(ctx, "u1", models.AccountType("admin"))
		assert.ErrorIs(t, err, ErrAccountTypeInvalid)
	})

	t.Run("player still on a roster cannot switch", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("p1", "player_one", models.AccountTypePlayer)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "p1", models.MemberRoleMember)
		err := env.users.ChangeAccountType(ctx, "p1", models.AccountTypeReferee)
		assert.ErrorIs(t, err, ErrStillTeamMember)
	})

	t.Run("referee with open matches cannot switch", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("r1", "ref_one", models.AccountTypeReferee)
		refID := "r1"
		env.store.matches["m1"] = &models.Match{
			ID:      "m1",
			Referee: models.MatchReferee{ID: &refID, IsAgreed: true},
			Status:  models.MatchStatusInProgress,
			Type:    models.MatchTypeClassic,
		}
		err := env.users.ChangeAccountType(ctx, "r1", models.AccountTypeUser)
		assert.ErrorIs(t, err, ErrRefereeHasActiveMatches)
	})

	t.Run("referee listed in a tournament cannot switch", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("r1", "ref_one", models.AccountTypeReferee)
		env.store.tournaments["cup"] = &models.Tournament{
			ID:         "cup",
			Name:       "summer_cup",
			RefereeIDs: []string{"r1"},
			Status:     models.TournamentStatusPending,
		}
		err := env.users.ChangeAccountType(ctx, "r1", models.AccountTypeUser)
		assert.ErrorIs(t, err, ErrRefereeListedInTournament)
	})

	t.Run("manager with an open tournament cannot switch", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("mgr", "the_manager", models.AccountTypeTournamentManager)
		env.store.tournaments["cup"] = &models.Tournament{
			ID:        "cup",
			Name:      "summer_cup",
			ManagerID: "mgr",
			Status:    models.TournamentStatusPending,
		}
		err := env.users.ChangeAccountType(ctx, "mgr", models.AccountTypeUser)
		assert.ErrorIs(t, err, ErrManagerHasActiveTournament)
	})

	t.Run("settled referee switches freely", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("r1", "ref_one", models.AccountTypeReferee)
		refID := "r1"
		env.store.matches["m1"] = &models.Match{
			ID:      "m1",
			Referee: models.MatchReferee{ID: &refID, IsAgreed: true},
			Status:  models.MatchStatusFinish,
			Type:    models.MatchTypeClassic,
		}
		require.NoError(t, env.users.ChangeAccountType(ctx, "r1", models.AccountTypeUser))
		assert.Equal(t, models.AccountTypeUser, env.store.users["r1"].AccountType)
	})
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("u1", "new_player", models.AccountTypeUser)

	location, err := env.users.UploadAvatar(context.Background(), "u1", "me.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/users/u1/avatar.jpg", location)
	require.NotNil(t, env.store.users["u1"].Avatar)
	assert.Equal(t, location, *env.store.users["u1"].Avatar)
}
