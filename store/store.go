package store

import "errors"

// ErrItemNotFound is returned by Get-style calls when the key has no
// record.
var ErrItemNotFound = errors.New("item not found")

// Tables names the DynamoDB tables backing each collection. Members
// are a composite-key table (team_id, uid) with a GSI on uid, which
// serves the "which team does this user belong to" lookup regardless
// of team.
type Tables struct {
	Users         string
	Teams         string
	TeamMembers   string
	Matches       string
	Tournaments   string
	Notifications string
}

// MembersByUIDIndex is the GSI on the team-members table keyed by uid.
const MembersByUIDIndex = "uid-index"
