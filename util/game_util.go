package util

import (
	"math/rand"

	"github.com/garoulab/garou-bot/model"
)

// Tally counts votes per target and returns the winner. Ties are broken by
// the lowest roster index among the targets at max count; the original
// implementation relied on map iteration order here, which was accidental,
// so the roster-index rule is the documented deterministic replacement.
func Tally(votes map[string]string, roster []*model.Player) (string, int) {
	counts := make(map[string]int)
	for _, target := range votes {
		counts[target]++
	}
	var winner string
	var max int
	for _, p := range roster {
		if c := counts[p.ID]; c > max {
			winner = p.ID
			max = c
		}
	}
	return winner, max
}

// VotersFor returns the ids of voters whose vote hit the given target.
func VotersFor(votes map[string]string, target string) []string {
	var voters []string
	for voter, t := range votes {
		if t == target {
			voters = append(voters, voter)
		}
	}
	return voters
}

// Shuffle is an in-place Fisher-Yates over the role slice.
func Shuffle(rng *rand.Rand, roles []model.Role) {
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
}

// FilterPlayers returns the players matching the condition, in roster order.
func FilterPlayers(players []*model.Player, condition func(*model.Player) bool) []*model.Player {
	out := make([]*model.Player, 0)
	for _, p := range players {
		if condition(p) {
			out = append(out, p)
		}
	}
	return out
}

// FindPlayer returns the first player matching the condition, or nil.
func FindPlayer(players []*model.Player, condition func(*model.Player) bool) *model.Player {
	for _, p := range players {
		if condition(p) {
			return p
		}
	}
	return nil
}
