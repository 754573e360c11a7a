package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
)

// NotificationService is the recipient-facing surface: listing the
// inbox and answering actionable notifications. Answering records the
// action first and then hands the transition to the dispatcher, so a
// reaction failure never erases the recorded answer.
type NotificationService interface {
	Respond(ctx context.Context, callerID, notificationID string, action models.Action) error
	ListForRecipient(ctx context.Context, callerID string) ([]models.Notification, error)
}

type notificationService struct {
	notifications repositories.NotificationRepository
	members       repositories.MemberRepository
	tournaments   repositories.TournamentRepository
	dispatcher    Dispatcher
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	members repositories.MemberRepository,
	tournaments repositories.TournamentRepository,
	dispatcher Dispatcher,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		members:       members,
		tournaments:   tournaments,
		dispatcher:    dispatcher,
	}
}

func (s *notificationService) Respond(ctx context.Context, callerID, notificationID string, action models.Action) error {
	if notificationID == "" {
		return ErrMissingParameters
	}
	if !action.Valid() {
		return ErrInvalidAction
	}

	before, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("loading notification: %w", err)
	}
	if !s.mayRespond(ctx, before, callerID) {
		return ErrNotificationNotFound
	}
	if before.Action != nil {
		return ErrActionAlreadySet
	}

	if err := s.notifications.SetAction(ctx, notificationID, action); err != nil {
		return fmt.Errorf("recording action: %w", err)
	}

	after := *before
	after.Action = &action
	s.dispatcher.Dispatch(ctx, before, &after)
	return nil
}

// mayRespond decides who speaks for the recipient. Users answer their
// own notifications; a team's coach answers notifications addressed to
// the team; a tournament's manager answers those addressed to the
// tournament.
func (s *notificationService) mayRespond(ctx context.Context, n *models.Notification, callerID string) bool {
	if n.ToID == callerID {
		return true
	}
	if member, err := s.members.Get(ctx, n.ToID, callerID); err == nil && member.Role == models.MemberRoleCoach {
		return true
	}
	if tournament, err := s.tournaments.GetByID(ctx, n.ToID); err == nil && tournament.ManagerID == callerID {
		return true
	}
	return false
}

func (s *notificationService) ListForRecipient(ctx context.Context, callerID string) ([]models.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}
