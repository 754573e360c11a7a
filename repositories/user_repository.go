package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

type dynamoUserRepository struct {
	client *store.Client
}

func NewDynamoUserRepository(client *store.Client) UserRepository {
	return &dynamoUserRepository{client: client}
}

func (r *dynamoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.client.GetItem(ctx, r.client.Tables.Users, store.StringKey("id", id), &user)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *dynamoUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.client.PutItem(ctx, r.client.Tables.Users, user)
}

func (r *dynamoUserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.client.UpdateFields(ctx, r.client.Tables.Users, store.StringKey("id", id), fields)
}

func (r *dynamoUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var users []models.User
	err := r.client.ScanFilter(ctx, r.client.Tables.Users,
		"username = :username",
		nil,
		map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		&users,
	)
	if err != nil {
		return false, fmt.Errorf("failed to look up username %q: %w", username, err)
	}
	return len(users) > 0, nil
}
