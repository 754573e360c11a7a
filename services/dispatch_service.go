package services

import (
	"context"
	"log/slog"

	"github.com/malaebhub/malaeb-server/models"
)

// Dispatcher routes a notification's first action transition to the
// workflow it triggers. Dispatch never returns an error: a reaction
// that cannot run is logged and dropped, the recorded action stands.
type Dispatcher interface {
	Dispatch(ctx context.Context, before, after *models.Notification)
}

type dispatcher struct {
	membership  MembershipService
	matches     MatchService
	tournaments TournamentService
	logger      *slog.Logger
}

func NewDispatcher(
	membership MembershipService,
	matches MatchService,
	tournaments TournamentService,
	logger *slog.Logger,
) Dispatcher {
	return &dispatcher{
		membership:  membership,
		matches:     matches,
		tournaments: tournaments,
		logger:      logger,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, before, after *models.Notification) {
	// Only the transition away from an unset action triggers anything.
	if before.Action != nil || after.Action == nil {
		return
	}
	action := *after.Action

	var err error
	switch after.Type {
	case models.NotificationTypeJoinTeamRequest:
		if action == models.ActionAccept {
			err = d.membership.AcceptJoinRequest(ctx, after.FromID, after.ToID)
		}
	case models.NotificationTypeTeamInvite:
		if action == models.ActionAccept {
			err = d.membership.AcceptTeamInvite(ctx, after.FromID, after.ToID)
		}
	case models.NotificationTypeMatchChallenge:
		if action == models.ActionAccept {
			err = d.matches.CreateFromChallenge(ctx, after)
		}
	case models.NotificationTypeRefereeInvite:
		err = d.matches.HandleRefereeResponse(ctx, after)
	case models.NotificationTypeJoinTournamentRequest:
		if action == models.ActionAccept {
			err = d.tournaments.AcceptTeamJoinRequest(ctx, after.FromID, after.ToID)
		}
	case models.NotificationTypeTournamentInvite:
		if action == models.ActionAccept {
			err = d.tournaments.AcceptTeamInvite(ctx, after.FromID, after.ToID)
		}
	case models.NotificationTypeTournamentRefInvite:
		if action == models.ActionAccept {
			err = d.tournaments.AcceptRefereeInvite(ctx, after.FromID, after.ToID)
		}
	}
	if err != nil {
		d.logger.Error("notification reaction failed",
			"notification_id", after.ID,
			"type", after.Type,
			"action", action,
			"error", err)
	}
}
