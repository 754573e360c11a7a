package models

import "time"

// AccountType gates every role check in the system: who may coach a
// team, join a roster, referee a match or manage a tournament.
type AccountType string

const (
	AccountTypeUser              AccountType = "user"
	AccountTypeCoach             AccountType = "coach"
	AccountTypePlayer            AccountType = "player"
	AccountTypeReferee           AccountType = "refree"
	AccountTypeTournamentManager AccountType = "tournament_manager"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeUser, AccountTypeCoach, AccountTypePlayer, AccountTypeReferee, AccountTypeTournamentManager:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type User struct {
	ID           string      `json:"id" dynamodbav:"id"`
	Username     string      `json:"username" dynamodbav:"username"`
	AccountType  AccountType `json:"accountType" dynamodbav:"accountType"`
	FirstName    *string     `json:"firstName,omitempty" dynamodbav:"firstName,omitempty"`
	LastName     *string     `json:"lastName,omitempty" dynamodbav:"lastName,omitempty"`
	Bio          *string     `json:"bio,omitempty" dynamodbav:"bio,omitempty"`
	Avatar       *string     `json:"avatar,omitempty" dynamodbav:"avatar,omitempty"`
	Gender       Gender      `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Birthday     *time.Time  `json:"birthday,omitempty" dynamodbav:"birthday,omitempty"`
	Address      *string     `json:"address,omitempty" dynamodbav:"address,omitempty"`
	PhoneNumbers []string    `json:"phoneNumbers,omitempty" dynamodbav:"phoneNumbers,omitempty"`
	JoinDate     time.Time   `json:"joinDate" dynamodbav:"joinDate"`
}
