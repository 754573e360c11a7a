package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
	// Create generates the team id and persists the record.
	Create(ctx context.Context, team *models.Team) (string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	NameTaken(ctx context.Context, teamName string) (bool, error)
}

type dynamoTeamRepository struct {
	client *store.Client
}

func NewDynamoTeamRepository(client *store.Client) TeamRepository {
	return &dynamoTeamRepository{client: client}
}

func (r *dynamoTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	err := r.client.GetItem(ctx, r.client.Tables.Teams, store.StringKey("id", id), &team)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return &team, nil
}

func (r *dynamoTeamRepository) Create(ctx context.Context, team *models.Team) (string, error) {
	team.ID = uuid.NewString()
	if err := r.client.PutItem(ctx, r.client.Tables.Teams, team); err != nil {
		return "", err
	}
	return team.ID, nil
}

func (r *dynamoTeamRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.client.UpdateFields(ctx, r.client.Tables.Teams, store.StringKey("id", id), fields)
}

func (r *dynamoTeamRepository) NameTaken(ctx context.Context, teamName string) (bool, error) {
	var teams []models.Team
	err := r.client.ScanFilter(ctx, r.client.Tables.Teams,
		"teamName = :teamName",
		nil,
		map[string]types.AttributeValue{
			":teamName": &types.AttributeValueMemberS{Value: teamName},
		},
		&teams,
	)
	if err != nil {
		return false, fmt.Errorf("failed to look up team name %q: %w", teamName, err)
	}
	return len(teams) > 0, nil
}
