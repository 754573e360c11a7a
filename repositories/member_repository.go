package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

// MemberRepository is the per-team roster sub-collection. ListByUser
// is the cross-team lookup ("is this user in any team"), served by the
// uid index.
type MemberRepository interface {
	Get(ctx context.Context, teamID, uid string) (*models.Member, error)
	Put(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, teamID, uid string) error
	ListByTeam(ctx context.Context, teamID string) ([]models.Member, error)
	ListByUser(ctx context.Context, uid string) ([]models.Member, error)
}

type dynamoMemberRepository struct {
	client *store.Client
}

func NewDynamoMemberRepository(client *store.Client) MemberRepository {
	return &dynamoMemberRepository{client: client}
}

func (r *dynamoMemberRepository) Get(ctx context.Context, teamID, uid string) (*models.Member, error) {
	var member models.Member
	err := r.client.GetItem(ctx, r.client.Tables.TeamMembers,
		store.CompositeKey("team_id", teamID, "uid", uid), &member)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member %s of team %s: %w", uid, teamID, err)
	}
	return &member, nil
}

func (r *dynamoMemberRepository) Put(ctx context.Context, member *models.Member) error {
	return r.client.PutItem(ctx, r.client.Tables.TeamMembers, member)
}

func (r *dynamoMemberRepository) Delete(ctx context.Context, teamID, uid string) error {
	return r.client.DeleteItem(ctx, r.client.Tables.TeamMembers,
		store.CompositeKey("team_id", teamID, "uid", uid))
}

func (r *dynamoMemberRepository) ListByTeam(ctx context.Context, teamID string) ([]models.Member, error) {
	var members []models.Member
	err := r.client.QueryPartition(ctx, r.client.Tables.TeamMembers, "team_id", teamID, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %s: %w", teamID, err)
	}
	return members, nil
}

func (r *dynamoMemberRepository) ListByUser(ctx context.Context, uid string) ([]models.Member, error) {
	var members []models.Member
	err := r.client.QueryIndex(ctx, r.client.Tables.TeamMembers, store.MembersByUIDIndex, "uid", uid, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of user %s: %w", uid, err)
	}
	return members, nil
}
