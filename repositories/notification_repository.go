package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/store"
)

type NotificationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// Create generates the notification id and persists the record.
	Create(ctx context.Context, notification *models.Notification) (string, error)
	SetAction(ctx context.Context, id string, action models.Action) error
	ListByRecipient(ctx context.Context, toID string) ([]models.Notification, error)
}

type dynamoNotificationRepository struct {
	client *store.Client
}

func NewDynamoNotificationRepository(client *store.Client) NotificationRepository {
	return &dynamoNotificationRepository{client: client}
}

func (r *dynamoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.client.GetItem(ctx, r.client.Tables.Notifications, store.StringKey("id", id), &notification)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	return &notification, nil
}

func (r *dynamoNotificationRepository) Create(ctx context.Context, notification *models.Notification) (string, error) {
	notification.ID = uuid.NewString()
	if err := r.client.PutItem(ctx, r.client.Tables.Notifications, notification); err != nil {
		return "", err
	}
	return notification.ID, nil
}

func (r *dynamoNotificationRepository) SetAction(ctx context.Context, id string, action models.Action) error {
	return r.client.UpdateFields(ctx, r.client.Tables.Notifications, store.StringKey("id", id),
		map[string]interface{}{"action": action})
}

func (r *dynamoNotificationRepository) ListByRecipient(ctx context.Context, toID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.client.QueryIndex(ctx, r.client.Tables.Notifications, "to_id-index", "to_id", toID, &notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", toID, err)
	}
	return notifications, nil
}
