package models

import "time"

type TournamentStatus string

const (
	TournamentStatusPending    TournamentStatus = "pending"
	TournamentStatusInProgress TournamentStatus = "in-progress"
	TournamentStatusFinish     TournamentStatus = "finish"
	TournamentStatusCanceled   TournamentStatus = "cancled"
)

func (s TournamentStatus) Terminal() bool {
	return s == TournamentStatusFinish || s == TournamentStatusCanceled
}

type Tournament struct {
	ID               string           `json:"id" dynamodbav:"id"`
	Name             string           `json:"name" dynamodbav:"name"`
	Logo             string           `json:"logo" dynamodbav:"logo"`
	Description      string           `json:"description" dynamodbav:"description"`
	Location         string           `json:"location" dynamodbav:"location"`
	CreatedBy        string           `json:"created_by" dynamodbav:"created_by"`
	ManagerID        string           `json:"manager_id" dynamodbav:"manager_id"`
	RefereeIDs       []string         `json:"refree_ids" dynamodbav:"refree_ids"`
	Participants     []string         `json:"participants" dynamodbav:"participants"`
	Status           TournamentStatus `json:"status" dynamodbav:"status"`
	MinMembersInTeam int              `json:"min_members_in_team" dynamodbav:"min_members_in_team"`
	MaxParticipants  int              `json:"max_participants" dynamodbav:"max_participants"`
	StartDate        time.Time        `json:"start_date" dynamodbav:"start_date"`
	EndDate          *time.Time       `json:"end_date" dynamodbav:"end_date"`
	CreatedAt        time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// HasParticipant reports whether the team is already registered.
func (t *Tournament) HasParticipant(teamID string) bool {
	for _, id := range t.Participants {
		if id == teamID {
			return true
		}
	}
	return false
}

// HasReferee reports whether uid is already on the referee list.
func (t *Tournament) HasReferee(uid string) bool {
	for _, id := range t.RefereeIDs {
		if id == uid {
			return true
		}
	}
	return false
}
