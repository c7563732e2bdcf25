package model

import "time"

// AdoptionState は譲渡申請の状態を表す。
type AdoptionState string

const (
	AdoptionStateSent      AdoptionState = "SENT"
	AdoptionStateReceived  AdoptionState = "RECEIVED"
	AdoptionStateReviewing AdoptionState = "REVIEWING"
	AdoptionStateApproved  AdoptionState = "APPROVED"
	AdoptionStateRejected  AdoptionState = "REJECTED"
)

// Valid は定義済みの状態かどうかを返す。
func (s AdoptionState) Valid() bool {
	switch s {
	case AdoptionStateSent, AdoptionStateReceived, AdoptionStateReviewing,
		AdoptionStateApproved, AdoptionStateRejected:
		return true
	}
	return false
}

// Terminal は終端状態かどうかを返す。
func (s AdoptionState) Terminal() bool {
	return s == AdoptionStateApproved || s == AdoptionStateRejected
}

// adoptionTransitions は許可された状態遷移を表す。
var adoptionTransitions = map[AdoptionState][]AdoptionState{
	AdoptionStateSent:      {AdoptionStateReceived, AdoptionStateRejected},
	AdoptionStateReceived:  {AdoptionStateReviewing, AdoptionStateRejected},
	AdoptionStateReviewing: {AdoptionStateApproved, AdoptionStateRejected},
}

// CanTransitionTo は指定状態への遷移が許可されているかを返す。
func (s AdoptionState) CanTransitionTo(next AdoptionState) bool {
	for _, allowed := range adoptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AdoptionRequest はペットの譲渡申請を表す。
type AdoptionRequest struct {
	ID        int64
	ShelterID int64
	PersonID  int64
	PetID     int64
	State     AdoptionState
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Favorite は人物がお気に入り登録したペットを表す。
type Favorite struct {
	PersonID  int64
	PetID     int64
	CreatedAt time.Time
}
