package model

import "encoding/json"

// Phase is the lifecycle state of a group's game.
type Phase string

const (
	P_WAITING_PLAYERS Phase = "WAITING_PLAYERS"
	P_ASSIGNING_ROLES Phase = "ASSIGNING_ROLES"
	P_NIGHT           Phase = "NIGHT"
	P_DAY             Phase = "DAY"
	P_ENDED           Phase = "ENDED"
)

func (p Phase) String() string {
	return string(p)
}

// Winner is the outcome of win evaluation. W_NONE means the game continues.
type Winner string

const (
	W_NONE      Winner = "NONE"
	W_VILLAGERS Winner = "VILLAGERS"
	W_WOLVES    Winner = "WOLVES"
	W_LOVERS    Winner = "LOVERS"
	W_TANNER    Winner = "TANNER"
)

func (w Winner) String() string {
	return string(w)
}

func (w Winner) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(w))
}
