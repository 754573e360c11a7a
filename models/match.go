package models

import "time"

type MatchStatus string

const (
	MatchStatusCoachsEdit     MatchStatus = "coachs_edit"
	MatchStatusRefereeWaiting MatchStatus = "refree_waiting"
	MatchStatusPending        MatchStatus = "pending"
	MatchStatusInProgress     MatchStatus = "in_progress"
	MatchStatusFinish         MatchStatus = "finish"
	MatchStatusCanceled       MatchStatus = "cancled"
)

// Terminal reports whether the match can never be mutated again.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusFinish || s == MatchStatusCanceled
}

type MatchType string

const (
	MatchTypeClassic    MatchType = "classic_match"
	MatchTypeTournament MatchType = "tournament"
)

// TeamMatch is one team's slice of a Match. Score stays nil until the
// referee sets it; IsAgreed tracks that team's acceptance of the
// currently proposed schedule and referee.
type TeamMatch struct {
	ID       string `json:"id" dynamodbav:"id"`
	Score    *int   `json:"score" dynamodbav:"score"`
	IsAgreed bool   `json:"isAgreed" dynamodbav:"isAgreed"`
}

type MatchReferee struct {
	ID       *string `json:"id" dynamodbav:"id"`
	IsAgreed bool    `json:"isAgreed" dynamodbav:"isAgreed"`
}

// Match is the central entity of the lifecycle engine. Its id is the
// id of the challenge notification that created it, not generated by
// the store.
type Match struct {
	ID        string       `json:"id" dynamodbav:"id"`
	Team1     TeamMatch    `json:"team1" dynamodbav:"team1"`
	Team2     TeamMatch    `json:"team2" dynamodbav:"team2"`
	Referee   MatchReferee `json:"refree" dynamodbav:"refree"`
	StartIn   *time.Time   `json:"startIn" dynamodbav:"startIn"`
	EndedAt   *time.Time   `json:"endedAt" dynamodbav:"endedAt"`
	Location  *string      `json:"location" dynamodbav:"location"`
	Status    MatchStatus  `json:"status" dynamodbav:"status"`
	Type      MatchType    `json:"type" dynamodbav:"type"`
	CreatedAt time.Time    `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" dynamodbav:"updatedAt"`
}
