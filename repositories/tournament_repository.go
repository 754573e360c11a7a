package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

type TournamentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// ListActiveByManager returns tournaments managed by uid whose
	// status is not finish or cancled.
	ListActiveByManager(ctx context.Context, uid string) ([]models.Tournament, error)
	// ListByReferee returns tournaments whose refree_ids contains uid.
	ListByReferee(ctx context.Context, uid string) ([]models.Tournament, error)
}

type dynamoTournamentRepository struct {
	client *store.Client
}

func NewDynamoTournamentRepository(client *store.Client) TournamentRepository {
	return &dynamoTournamentRepository{client: client}
}

func (r *dynamoTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	var tournament models.Tournament
	err := r.client.GetItem(ctx, r.client.Tables.Tournaments, store.StringKey("id", id), &tournament)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return &tournament, nil
}

func (r *dynamoTournamentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.client.UpdateFields(ctx, r.client.Tables.Tournaments, store.StringKey("id", id), fields)
}

func (r *dynamoTournamentRepository) Delete(ctx context.Context, id string) error {
	return r.client.DeleteItem(ctx, r.client.Tables.Tournaments, store.StringKey("id", id))
}

func (r *dynamoTournamentRepository) ListActiveByManager(ctx context.Context, uid string) ([]models.Tournament, error) {
	var tournaments []models.Tournament
	err := r.client.ScanFilter(ctx, r.client.Tables.Tournaments,
		"manager_id = :uid AND NOT (#status IN (:finish, :cancled))",
		map[string]string{"#status": "status"},
		map[string]types.AttributeValue{
			":uid":     &types.AttributeValueMemberS{Value: uid},
			":finish":  &types.AttributeValueMemberS{Value: string(models.TournamentStatusFinish)},
			":cancled": &types.AttributeValueMemberS{Value: string(models.TournamentStatusCanceled)},
		},
		&tournaments,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments managed by %s: %w", uid, err)
	}
	return tournaments, nil
}

func (r *dynamoTournamentRepository) ListByReferee(ctx context.Context, uid string) ([]models.Tournament, error) {
	var tournaments []models.Tournament
	err := r.client.ScanFilter(ctx, r.client.Tables.Tournaments,
		"contains(refree_ids, :uid)",
		nil,
		map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: uid},
		},
		&tournaments,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments refereed by %s: %w", uid, err)
	}
	return tournaments, nil
}
