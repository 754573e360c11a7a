package services

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
)

// Notifier creates notification documents. Every business event that
// reaches a user goes through here; the action field always starts
// unset so the recipient can still react to actionable types.
type Notifier interface {
	Info(ctx context.Context, fromID, toID, title, message string) error
	Send(ctx context.Context, fromID, toID, title, message string, typ models.NotificationType) error
	NotifyTeamMembers(ctx context.Context, teamID, title, message string) error
}

type notifier struct {
	notifications repositories.NotificationRepository
	members       repositories.MemberRepository
	clock         clockwork.Clock
}

func NewNotifier(notifications repositories.NotificationRepository, members repositories.MemberRepository, clock clockwork.Clock) Notifier {
	return &notifier{notifications: notifications, members: members, clock: clock}
}

func (n *notifier) Info(ctx context.Context, fromID, toID, title, message string) error {
	return n.Send(ctx, fromID, toID, title, message, models.NotificationTypeInfo)
}

func (n *notifier) Send(ctx context.Context, fromID, toID, title, message string, typ models.NotificationType) error {
	notification := &models.Notification{
		FromID:    fromID,
		ToID:      toID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: n.clock.Now().UTC(),
	}
	if _, err := n.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// NotifyTeamMembers fans an info notification out to the current
// roster of the team. Membership is read once; members joining or
// leaving concurrently may miss the announcement.
func (n *notifier) NotifyTeamMembers(ctx context.Context, teamID, title, message string) error {
	members, err := n.members.ListByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("listing team members: %w", err)
	}

	var g errgroup.Group
	for _, m := range members {
		uid := m.UID
		g.Go(func() error {
			return n.Info(ctx, teamID, uid, title, message)
		})
	}
	return g.Wait()
}
