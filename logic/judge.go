package logic

import (
	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/util"
)

// EvaluateWin is a pure function of the roster. It returns W_NONE while the
// game should continue. The Tanner's win is not evaluated here: it is an
// immediate short-circuit applied at execution time, because being voted out
// is the condition, not any standing alive/dead comparison.
func EvaluateWin(players []*model.Player) model.Winner {
	alive := util.FilterPlayers(players, func(p *model.Player) bool {
		return !p.IsDead
	})
	if len(alive) == 2 && alive[0].Lover == alive[1].ID && alive[1].Lover == alive[0].ID {
		return model.W_LOVERS
	}
	var wolves, others int
	for _, p := range alive {
		if p.Role.IsWolf() {
			wolves++
		} else {
			others++
		}
	}
	if wolves == 0 {
		return model.W_VILLAGERS
	}
	if wolves >= others {
		return model.W_WOLVES
	}
	return model.W_NONE
}

// Winners lists the players credited with the given outcome, dead or alive.
func Winners(players []*model.Player, winner model.Winner) []*model.Player {
	switch winner {
	case model.W_VILLAGERS:
		return util.FilterPlayers(players, func(p *model.Player) bool {
			return !p.Role.IsWolf()
		})
	case model.W_WOLVES:
		return util.FilterPlayers(players, func(p *model.Player) bool {
			return p.Role.IsWolf() || p.Role == model.R_MADMAN
		})
	case model.W_LOVERS:
		return util.FilterPlayers(players, func(p *model.Player) bool {
			return !p.IsDead && p.Lover != ""
		})
	case model.W_TANNER:
		// The executed tanner plus, per house rule, their lover.
		tanner := util.FindPlayer(players, func(p *model.Player) bool {
			return p.Role == model.R_TANNER
		})
		if tanner == nil {
			return nil
		}
		winners := []*model.Player{tanner}
		if tanner.Lover != "" {
			if partner := util.FindPlayer(players, func(p *model.Player) bool {
				return p.ID == tanner.Lover
			}); partner != nil {
				winners = append(winners, partner)
			}
		}
		return winners
	}
	return nil
}
