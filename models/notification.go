package models

import "time"

// Action is the recipient's response recorded on a notification. It is
// written at most once; the unset→set transition is what drives the
// reaction dispatcher.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionView    Action = "view"
)

func (a Action) Valid() bool {
	return a == ActionAccept || a == ActionDecline || a == ActionView
}

type NotificationType string

const (
	NotificationTypeInfo                  NotificationType = "info"
	NotificationTypeJoinTeamRequest       NotificationType = "request_to_join_team"
	NotificationTypeJoinTournamentRequest NotificationType = "request_to_join_tournament"
	NotificationTypeMatchChallenge        NotificationType = "match_chalenge"
	NotificationTypeRefereeInvite         NotificationType = "refree_invite"
	NotificationTypeTeamInvite            NotificationType = "invite_to_team"
	NotificationTypeTournamentInvite      NotificationType = "invite_to_tournament"
	NotificationTypeTournamentRefInvite   NotificationType = "invite_referee_to_tournament"
)

// Notification addresses from_id → to_id, where either side may be a
// user, team, match or tournament id depending on Type.
type Notification struct {
	ID        string           `json:"id" dynamodbav:"id"`
	FromID    string           `json:"from_id" dynamodbav:"from_id"`
	ToID      string           `json:"to_id" dynamodbav:"to_id"`
	Title     string           `json:"title" dynamodbav:"title"`
	Message   string           `json:"message" dynamodbav:"message"`
	Type      NotificationType `json:"type" dynamodbav:"type"`
	Action    *Action          `json:"action" dynamodbav:"action"`
	CreatedAt time.Time        `json:"createdAt" dynamodbav:"createdAt"`
}
