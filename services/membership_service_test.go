package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaebhub/malaeb-server/models"
)

func TestAcceptJoinRequest(t *testing.T) {
	ctx := context.Background()

	setup := func() *testEnv {
		env := newTestEnv()
		env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
		env.store.addUser("p1", "player_one", models.AccountTypePlayer)
		env.store.addTeam("t1", "first_team")
		env.store.addMember("t1", "coach", models.MemberRoleCoach)
		return env
	}

	t.Run("eligible player joins and the team hears about it", func(t *testing.T) {
		env := setup()
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "p1", "t1"))

		member, ok := env.store.members["t1"]["p1"]
		require.True(t, ok, "member row should exist")
		assert.Equal(t, models.MemberRoleMember, member.Role)

		coachNotifs := env.store.notificationsTo("coach")
		require.Len(t, coachNotifs, 1)
		assert.Equal(t, "New Team Member Joined", coachNotifs[0].Title)
		assert.Equal(t, "player_one new member has joined the team.", coachNotifs[0].Message)
	})

	t.Run("non player is declined with a notification pair", func(t *testing.T) {
		env := setup()
		env.store.addUser("ref", "some_refree", models.AccountTypeReferee)
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "ref", "t1"))

		_, ok := env.store.members["t1"]["ref"]
		assert.False(t, ok)

		userNotifs := env.store.notificationsTo("ref")
		require.Len(t, userNotifs, 1)
		assert.Equal(t, "Request Declined", userNotifs[0].Title)
		assert.Contains(t, userNotifs[0].Message, "account type is not player")

		teamNotifs := env.store.notificationsTo("t1")
		require.Len(t, teamNotifs, 1)
		assert.Equal(t, "Request Declined", teamNotifs[0].Title)
	})

	t.Run("player already in a team is declined", func(t *testing.T) {
		env := setup()
		env.store.addTeam("t2", "second_team")
		env.store.addMember("t2", "p1", models.MemberRoleMember)
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "p1", "t1"))

		_, ok := env.store.members["t1"]["p1"]
		assert.False(t, ok)
		userNotifs := env.store.notificationsTo("p1")
		require.Len(t, userNotifs, 1)
		assert.Contains(t, userNotifs[0].Message, "already in a team")
	})

	t.Run("blacklisted player is declined", func(t *testing.T) {
		env := setup()
		env.store.teams["t1"].BlackList = []string{"p1"}
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "p1", "t1"))

		_, ok := env.store.members["t1"]["p1"]
		assert.False(t, ok)
		userNotifs := env.store.notificationsTo("p1")
		require.Len(t, userNotifs, 1)
		assert.Contains(t, userNotifs[0].Message, "blackList")
	})

	t.Run("missing user or team is a silent no-op", func(t *testing.T) {
		env := setup()
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "ghost", "t1"))
		require.NoError(t, env.membership.AcceptJoinRequest(ctx, "p1", "ghost"))
		assert.Empty(t, env.store.notifications)
	})
}

func TestAcceptTeamInvite_DeclineTitle(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("ref", "some_refree", models.AccountTypeReferee)
	env.store.addTeam("t1", "first_team")
	require.NoError(t, env.membership.AcceptTeamInvite(context.Background(), "t1", "ref"))

	userNotifs := env.store.notificationsTo("ref")
	require.Len(t, userNotifs, 1)
	assert.Equal(t, "Invite Declined", userNotifs[0].Title)
}

func TestMemberAdded_RoleMismatchIsSkipped(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
	env.store.addTeam("t1", "first_team")
	env.store.addMember("t1", "coach", models.MemberRoleCoach)

	// A coach announced as a member does not match member/player.
	require.NoError(t, env.membership.MemberAdded(context.Background(), "t1", "coach", models.MemberRoleMember))
	assert.Empty(t, env.store.notifications)
}

func TestMemberRemoved(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
	env.store.addUser("p1", "player_one", models.AccountTypePlayer)
	env.store.addTeam("t1", "first_team")
	env.store.addMember("t1", "coach", models.MemberRoleCoach)
	env.store.addMember("t1", "p1", models.MemberRoleMember)

	require.NoError(t, env.membership.MemberRemoved(context.Background(), "t1", "p1"))

	coachNotifs := env.store.notificationsTo("coach")
	require.Len(t, coachNotifs, 1)
	assert.Equal(t, "Team Member Removed", coachNotifs[0].Title)
	assert.Equal(t, "player_one member has been removed from the team.", coachNotifs[0].Message)
}

func TestMemberRemoved_UnknownUserFallsBack(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("coach", "the_coach", models.AccountTypeCoach)
	env.store.addTeam("t1", "first_team")
	env.store.addMember("t1", "coach", models.MemberRoleCoach)

	require.NoError(t, env.membership.MemberRemoved(context.Background(), "t1", "ghost"))

	coachNotifs := env.store.notificationsTo("coach")
	require.Len(t, coachNotifs, 1)
	assert.Equal(t, "A member has been removed from the team.", coachNotifs[0].Message)
}
