package logic

import (
	"errors"
	"math"
	"math/rand"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/util"
)

// RoleDistribution computes how many of each role a game of n players gets.
// Thresholds follow the original ruleset: small games are wolves and
// villagers only, specials unlock as the table grows.
func RoleDistribution(rng *rand.Rand, n int) map[model.Role]int {
	distribution := map[model.Role]int{
		model.R_WEREWOLF: max(1, n/5),
	}
	if n >= 6 {
		distribution[model.R_SEER] = 1
		distribution[model.R_HUNTER] = 1
	}
	if n >= 9 {
		distribution[model.R_DOCTOR] = 1
		distribution[model.R_TANNER] = 1
	}
	if n >= 13 {
		distribution[model.R_WITCH] = 1
	}
	if n >= 7 {
		distribution[model.R_CUPID] = 1
		distribution[model.R_PROSTITUTE] = 1
	}
	if n >= 5 {
		distribution[model.R_MAYOR] = 1
	}
	switch {
	case n >= 14:
		distribution[model.R_MADMAN] = 2
	case n >= 5:
		distribution[model.R_MADMAN] = 1
	}
	if n > 12 {
		distribution[model.R_SERIALKILLER] = 1
	}
	if n >= 11 {
		distribution[model.R_PYROMANIAC] = 1
	}

	var specials int
	for _, count := range distribution {
		specials += count
	}
	distribution[model.R_VILLAGER] = max(0, n-specials)

	// One random non-werewolf special slot becomes an extra Madman in
	// larger games, so the role list is never fully predictable.
	if n > 6 {
		candidates := make([]model.Role, 0, len(distribution))
		for role, count := range distribution {
			if role != model.R_WEREWOLF && role != model.R_MADMAN && count > 0 {
				candidates = append(candidates, role)
			}
		}
		if len(candidates) > 0 {
			// Map iteration order is random; sort by name for a stable
			// candidate list before drawing.
			for i := 1; i < len(candidates); i++ {
				for j := i; j > 0 && candidates[j].Name < candidates[j-1].Name; j-- {
					candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
				}
			}
			picked := candidates[rng.Intn(len(candidates))]
			distribution[picked]--
			distribution[model.R_MADMAN]++
		}
	}
	return distribution
}

// GenerateRoles builds the shuffled role list assigned positionally to the
// roster in join order.
func GenerateRoles(rng *rand.Rand, n int) []model.Role {
	distribution := RoleDistribution(rng, n)
	roles := make([]model.Role, 0, n)
	// Fixed emission order; the shuffle provides the randomness.
	order := []model.Role{
		model.R_WEREWOLF, model.R_SEER, model.R_DOCTOR, model.R_HUNTER,
		model.R_WITCH, model.R_CUPID, model.R_PROSTITUTE, model.R_MAYOR,
		model.R_TANNER, model.R_MADMAN, model.R_SERIALKILLER,
		model.R_PYROMANIAC, model.R_VILLAGER,
	}
	for _, role := range order {
		for i := 0; i < distribution[role]; i++ {
			roles = append(roles, role)
		}
	}
	util.Shuffle(rng, roles)
	return roles
}

var ErrBadDistribution = errors.New("invalid role distribution")

// ValidateRoles guards against a degenerate random split: at least one wolf,
// at most a third of the table. A violation aborts game start.
func ValidateRoles(roles []model.Role) error {
	var wolves int
	for _, role := range roles {
		if role == model.R_WEREWOLF {
			wolves++
		}
	}
	if wolves < 1 {
		return ErrBadDistribution
	}
	if wolves > int(math.Ceil(float64(len(roles))/3)) {
		return ErrBadDistribution
	}
	return nil
}

// AlphaUpgradeChance depends on the table size bracket: mid-size games get
// the highest odds.
func AlphaUpgradeChance(config *model.Config, n int) float64 {
	switch {
	case n < 8:
		return config.Game.Chances.AlphaUpgradeSmall
	case n <= 10:
		return config.Game.Chances.AlphaUpgradeMid
	default:
		return config.Game.Chances.AlphaUpgradeLarge
	}
}
