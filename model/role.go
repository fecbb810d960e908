package model

import "encoding/json"

// Role is a closed set. Behavior hangs off the capability descriptor
// (NightAction, Team) instead of string comparisons at call sites.
type Role struct {
	Name   string
	Team   Team
	Action NightAction
}

var (
	R_VILLAGER     = Role{Name: "VILLAGER", Team: T_VILLAGER, Action: A_NONE}
	R_WEREWOLF     = Role{Name: "WEREWOLF", Team: T_WEREWOLF, Action: A_KILL}
	R_ALPHAWOLF    = Role{Name: "ALPHA_WEREWOLF", Team: T_WEREWOLF, Action: A_KILL}
	R_SEER         = Role{Name: "SEER", Team: T_VILLAGER, Action: A_INSPECT}
	R_DOCTOR       = Role{Name: "DOCTOR", Team: T_VILLAGER, Action: A_PROTECT}
	R_WITCH        = Role{Name: "WITCH", Team: T_VILLAGER, Action: A_HEAL_OR_POISON}
	R_CUPID        = Role{Name: "CUPID", Team: T_VILLAGER, Action: A_PAIR}
	R_PROSTITUTE   = Role{Name: "PROSTITUTE", Team: T_VILLAGER, Action: A_VISIT}
	R_MAYOR        = Role{Name: "MAYOR", Team: T_VILLAGER, Action: A_DAY_POWER}
	R_HUNTER       = Role{Name: "HUNTER", Team: T_VILLAGER, Action: A_NONE}
	R_TANNER       = Role{Name: "TANNER", Team: T_SOLO, Action: A_NONE}
	R_MADMAN       = Role{Name: "MADMAN", Team: T_VILLAGER, Action: A_NONE}
	R_SERIALKILLER = Role{Name: "SERIALKILLER", Team: T_SOLO, Action: A_KILL_ALONE}
	R_PYROMANIAC   = Role{Name: "PYROMANIAC", Team: T_SOLO, Action: A_OIL_IGNITE}
	R_NONE         = Role{Name: "NONE", Team: T_NONE, Action: A_NONE}
)

type Team string

const (
	T_VILLAGER Team = "VILLAGER"
	T_WEREWOLF Team = "WEREWOLF"
	T_SOLO     Team = "SOLO"
	T_NONE     Team = "NONE"
)

// NightAction classifies what a role may submit during the night window.
type NightAction string

const (
	A_NONE           NightAction = "NONE"
	A_KILL           NightAction = "KILL"
	A_INSPECT        NightAction = "INSPECT"
	A_PROTECT        NightAction = "PROTECT"
	A_HEAL_OR_POISON NightAction = "HEAL_OR_POISON"
	A_PAIR           NightAction = "PAIR"
	A_VISIT          NightAction = "VISIT"
	A_KILL_ALONE     NightAction = "KILL_ALONE"
	A_OIL_IGNITE     NightAction = "OIL_IGNITE"
	A_DAY_POWER      NightAction = "DAY_POWER"
)

// ActionPolicy describes how repeated submissions of a role's ability are
// handled by the intake layer.
type ActionPolicy struct {
	Overwritable bool
	OncePerNight bool
	OncePerGame  bool
}

var actionPolicies = map[NightAction]ActionPolicy{
	A_KILL:           {Overwritable: true},
	A_INSPECT:        {OncePerNight: true},
	A_PROTECT:        {Overwritable: true},
	A_HEAL_OR_POISON: {OncePerGame: true},
	A_PAIR:           {OncePerGame: true},
	A_VISIT:          {OncePerNight: true},
	A_KILL_ALONE:     {Overwritable: true},
	A_OIL_IGNITE:     {OncePerNight: true},
	A_DAY_POWER:      {OncePerGame: true},
}

func (a NightAction) Policy() ActionPolicy {
	return actionPolicies[a]
}

// IsWolf reports whether the role counts toward the werewolf side for win
// evaluation. Madman does not: it wants the wolves to win but is tallied as
// a non-wolf.
func (r Role) IsWolf() bool {
	return r == R_WEREWOLF || r == R_ALPHAWOLF
}

func (r Role) String() string {
	return r.Name
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Name)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*r = RoleFromString(name)
	return nil
}

func RoleFromString(s string) Role {
	switch s {
	case "VILLAGER":
		return R_VILLAGER
	case "WEREWOLF":
		return R_WEREWOLF
	case "ALPHA_WEREWOLF":
		return R_ALPHAWOLF
	case "SEER":
		return R_SEER
	case "DOCTOR":
		return R_DOCTOR
	case "WITCH":
		return R_WITCH
	case "CUPID":
		return R_CUPID
	case "PROSTITUTE":
		return R_PROSTITUTE
	case "MAYOR":
		return R_MAYOR
	case "HUNTER":
		return R_HUNTER
	case "TANNER":
		return R_TANNER
	case "MADMAN":
		return R_MADMAN
	case "SERIALKILLER":
		return R_SERIALKILLER
	case "PYROMANIAC":
		return R_PYROMANIAC
	}
	return R_NONE
}

// FakeRolePool is the set of visible roles a Madman may claim to hold.
var FakeRolePool = []Role{R_SEER, R_PROSTITUTE, R_MAYOR, R_TANNER}
