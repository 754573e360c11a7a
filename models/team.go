package models

import "time"

type Team struct {
	ID          string    `json:"id" dynamodbav:"id"`
	TeamName    string    `json:"teamName" dynamodbav:"teamName"`
	TeamLogo    string    `json:"teamLogo" dynamodbav:"teamLogo"`
	Description string    `json:"description" dynamodbav:"description"`
	BlackList   []string  `json:"blackList,omitempty" dynamodbav:"blackList,omitempty"`
	CreatedBy   string    `json:"createdBy" dynamodbav:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Blacklisted reports whether uid is barred from joining the team.
func (t *Team) Blacklisted(uid string) bool {
	for _, banned := range t.BlackList {
		if banned == uid {
			return true
		}
	}
	return false
}

type MemberRole string

const (
	MemberRoleCoach  MemberRole = "coach"
	MemberRoleMember MemberRole = "member"
)

// Member is a roster entry in a team's member sub-collection. A team
// has at most one coach at a time.
type Member struct {
	TeamID   string     `json:"team_id" dynamodbav:"team_id"`
	UID      string     `json:"uid" dynamodbav:"uid"`
	Role     MemberRole `json:"role" dynamodbav:"role"`
	JoinedAt time.Time  `json:"joinedAt" dynamodbav:"joinedAt"`
}
