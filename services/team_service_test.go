package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaebhub/malaeb-server/models"
)

func newCreateTeamRequest() *CreateTeamRequest {
	return &CreateTeamRequest{
		TeamName:        "new_team",
		TeamLogo:        "https://cdn.test/logo.png",
		TeamDescription: "a brand new team",
	}
}

func TestTeamCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("coach founds a team and takes the coach seat", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)

		teamID, err := env.teams.Create(ctx, "coach", newCreateTeamRequest())
		require.NoError(t, err)
		require.NotEmpty(t, teamID)

		team, ok := env.store.teams[teamID]
		require.True(t, ok)
		assert.Equal(t, "new_team", team.TeamName)
		assert.NotNil(t, team.BlackList)

		member, ok := env.store.members[teamID]["coach"]
		require.True(t, ok)
		assert.Equal(t, models.MemberRoleCoach, member.Role)

		notifs := env.store.notificationsTo("coach")
		require.Len(t, notifs, 1)
		assert.Equal(t, "New Team Member Joined", notifs[0].Title)
	})

	t.Run("non coach cannot found a team", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("p1", "player_one", models.AccountTypePlayer)
		_, err := env.teams.Create(ctx, "p1", newCreateTeamRequest())
		assert.ErrorIs(t, err, ErrUserNotCoach)
	})

	t.Run("coach already in a team cannot found another", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		_, err := env.teams.Create(ctx, "coach", newCreateTeamRequest())
		assert.ErrorIs(t, err, ErrCoachAlreadyInTeam)
	})

	t.Run("team name must be free", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addTeam("t1", "new_team")
		_, err := env.teams.Create(ctx, "coach", newCreateTeamRequest())
		assert.ErrorIs(t, err, ErrTeamNameTaken)
	})

	t.Run("team name must match the name rules", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		req := newCreateTeamRequest()
		req.TeamName = "Bad Name!"
		_, err := env.teams.Create(ctx, "coach", req)
		assert.ErrorIs(t, err, ErrTeamNameInvalid)
	})

	t.Run("all fields are required", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		req := newCreateTeamRequest()
		req.TeamLogo = ""
		_, err := env.teams.Create(ctx, "coach", req)
		assert.ErrorIs(t, err, ErrMissingParameters)
	})
}

func TestTeamUpdate(t *testing.T) {
	ctx := context.Background()

	setup := func() *testEnv {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		return env
	}

	t.Run("coach updates the profile", func(t *testing.T) {
		env := setup()
		name := "renamed_team"
		desc := "new description"
		require.NoError(t, env.teams.Update(ctx, "coach", "t1", &UpdateTeamRequest{
			TeamName:        &name,
			TeamDescription: &desc,
		}))
		assert.Equal(t, "renamed_team", env.store.teams["t1"].TeamName)
		assert.Equal(t, "new description", env.store.teams["t1"].Description)
	})

	t.Run("at least one field is required", func(t *testing.T) {
		env := setup()
		err := env.teams.Update(ctx, "coach", "t1", &UpdateTeamRequest{})
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})

	t.Run("only the team coach may update", func(t *testing.T) {
		env := setup()
		env.store.addUser("coach2", "other_coach", models.AccountTypeCoach)
		name := "renamed_team"
		err := env.teams.Update(ctx, "coach2", "t1", &UpdateTeamRequest{TeamName: &name})
		assert.ErrorIs(t, err, ErrNotTeamCoach)
	})

	t.Run("renaming to a taken name is rejected", func(t *testing.T) {
		env := setup()
		env.store.addTeam("t2", "second_team")
		name := "second_team"
		err := env.teams.Update(ctx, "coach", "t1", &UpdateTeamRequest{TeamName: &name})
		assert.ErrorIs(t, err, ErrTeamNameTaken)
	})
}

func TestChangeCoach(t *testing.T) {
	ctx := context.Background()

	setup := func() *testEnv {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addUser("p1", "player_one", models.AccountTypePlayer)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		env.store.addMember("t1", "p1", models.MemberRoleMember)
		return env
	}

	t.Run("roles and account types swap", func(t *testing.T) {
		env := setup()
		require.NoError(t, env.teams.ChangeCoach(ctx, "coach", "p1", "t1"))

		assert.Equal(t, models.MemberRoleMember, env.store.members["t1"]["coach"].Role)
		assert.Equal(t, models.MemberRoleCoach, env.store.members["t1"]["p1"].Role)
		assert.Equal(t, models.AccountTypePlayer, env.store.users["coach"].AccountType)
		assert.Equal(t, models.AccountTypeCoach, env.store.users["p1"].AccountType)

		coachNotifs := env.store.notificationsTo("coach")
		require.NotEmpty(t, coachNotifs)
		assert.Equal(t, "Your role has been changed to member.", coachNotifs[0].Message)
		memberNotifs := env.store.notificationsTo("p1")
		require.NotEmpty(t, memberNotifs)
		assert.Equal(t, "Your role has been changed to coach.", memberNotifs[0].Message)

		// Team-wide announcement names the new coach.
		last := coachNotifs[len(coachNotifs)-1]
		assert.True(t, strings.HasSuffix(last.Message, "the new coach is player_one."))
	})

	t.Run("coach cannot hand the seat to themselves", func(t *testing.T) {
		env := setup()
		err := env.teams.ChangeCoach(ctx, "coach", "coach", "t1")
		assert.ErrorIs(t, err, ErrSameCoachAndMember)
	})

	t.Run("caller must hold the coach seat", func(t *testing.T) {
		env := setup()
		err := env.teams.ChangeCoach(ctx, "p1", "coach", "t1")
		assert.ErrorIs(t, err, ErrNotTeamCoach)
	})

	t.Run("target must be on the roster", func(t *testing.T) {
		env := setup()
		env.store.addUser("p2", "player_two", models.AccountTypePlayer)
		err := env.teams.ChangeCoach(ctx, "coach", "p2", "t1")
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestLeaveForCoach(t *testing.T) {
	ctx := context.Background()

	t.Run("alone and idle coach disbands the team", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)

		require.NoError(t, env.teams.LeaveForCoach(ctx, "coach", "t1"))

		_, stillMember := env.store.members["t1"]["coach"]
		assert.False(t, stillMember)
		// The team record stays for history.
		_, teamExists := env.store.teams["t1"]
		assert.True(t, teamExists)

		notifs := env.store.notificationsTo("coach")
		require.NotEmpty(t, notifs)
		assert.Equal(t, "Team Deleted", notifs[len(notifs)-1].Title)
	})

	t.Run("roster must be empty first", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addUser("p1", "player_one", models.AccountTypePlayer)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		env.store.addMember("t1", "p1", models.MemberRoleMember)

		err := env.teams.LeaveForCoach(ctx, "coach", "t1")
		assert.ErrorIs(t, err, ErrTeamNotEmpty)
	})

	t.Run("open matches block disbanding", func(t *testing.T) {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		env.store.matches["m1"] = &models.Match{
			ID:     "m1",
			Team1:  models.TeamMatch{ID: "t1"},
			Team2:  models.TeamMatch{ID: "t2"},
			Status: models.MatchStatusPending,
			Type:   models.MatchTypeClassic,
		}

		err := env.teams.LeaveForCoach(ctx, "coach", "t1")
		assert.ErrorIs(t, err, ErrTeamHasActiveMatches)
	})
}

func TestUploadLogo(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
	env.store.addTeam("t1", "first_team")
	env.store.addMember("t1", "coach", models.MemberRoleCoach)

	location, err := env.teams.UploadLogo(context.Background(), "coach", "t1", "logo.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/teams/t1/logo.png", location)
	assert.Equal(t, location, env.store.teams["t1"].TeamLogo)
	assert.Equal(t, []string{"teams/t1/logo.png"}, env.uploader.uploaded)
}
