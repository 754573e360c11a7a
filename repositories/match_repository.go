package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

type MatchRepository interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	// Create persists a match under its caller-supplied id (the id of
	// the challenge notification, never store-generated).
	Create(ctx context.Context, match *models.Match) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// ListActiveByTeam returns matches involving the team on either
	// side whose status is not finish or cancled.
	ListActiveByTeam(ctx context.Context, teamID string) ([]models.Match, error)
	// ListActiveByReferee returns matches assigned to the referee in a
	// status outside finish, cancled and coachs_edit.
	ListActiveByReferee(ctx context.Context, uid string) ([]models.Match, error)
}

type dynamoMatchRepository struct {
	client *store.Client
}

func NewDynamoMatchRepository(client *store.Client) MatchRepository {
	return &dynamoMatchRepository{client: client}
}

func (r *dynamoMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	err := r.client.GetItem(ctx, r.client.Tables.Matches, store.StringKey("id", id), &match)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return &match, nil
}

func (r *dynamoMatchRepository) Create(ctx context.Context, match *models.Match) error {
	return r.client.PutItem(ctx, r.client.Tables.Matches, match)
}

func (r *dynamoMatchRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.client.UpdateFields(ctx, r.client.Tables.Matches, store.StringKey("id", id), fields)
}

func (r *dynamoMatchRepository) ListActiveByTeam(ctx context.Context, teamID string) ([]models.Match, error) {
	var matches []models.Match
	err := r.client.ScanFilter(ctx, r.client.Tables.Matches,
		"(team1.id = :team OR team2.id = :team) AND NOT (#status IN (:finish, :cancled))",
		map[string]string{"#status": "status"},
		map[string]types.AttributeValue{
			":team":    &types.AttributeValueMemberS{Value: teamID},
			":finish":  &types.AttributeValueMemberS{Value: string(models.MatchStatusFinish)},
			":cancled": &types.AttributeValueMemberS{Value: string(models.MatchStatusCanceled)},
		},
		&matches,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active matches of team %s: %w", teamID, err)
	}
	return matches, nil
}

func (r *dynamoMatchRepository) ListActiveByReferee(ctx context.Context, uid string) ([]models.Match, error) {
	var matches []models.Match
	err := r.client.ScanFilter(ctx, r.client.Tables.Matches,
		"refree.id = :uid AND NOT (#status IN (:finish, :cancled, :coachsEdit))",
		map[string]string{"#status": "status"},
		map[string]types.AttributeValue{
			":uid":        &types.AttributeValueMemberS{Value: uid},
			":finish":     &types.AttributeValueMemberS{Value: string(models.MatchStatusFinish)},
			":cancled":    &types.AttributeValueMemberS{Value: string(models.MatchStatusCanceled)},
			":coachsEdit": &types.AttributeValueMemberS{Value: string(models.MatchStatusCoachsEdit)},
		},
		&matches,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active matches of referee %s: %w", uid, err)
	}
	return matches, nil
}
