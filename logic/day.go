package logic

import (
	"fmt"
	"log/slog"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/util"
)

// ResolveDay tallies the execution vote. The mayor's armed stop-vote skips
// the tally entirely; a Tanner execution short-circuits the whole game.
func (g *Game) ResolveDay() {
	slog.Info("resolving day", "id", g.ID, "night", g.Night)
	g.NextPhase = model.P_NIGHT

	if g.VotesStopped {
		g.VotesStopped = false
		mayor := util.FindPlayer(g.Players, func(p *model.Player) bool {
			return p.Role == model.R_MAYOR
		})
		if mayor != nil {
			g.messenger.SendText(g.GroupID, "⚖️ The vote was cancelled by the Mayor @"+mayor.Mention(), mayor.ID)
		} else {
			g.messenger.SendText(g.GroupID, "⚖️ The vote was cancelled.")
		}
		return
	}

	victimID, _ := util.Tally(g.Votes, g.Players)
	if victimID == "" {
		g.messenger.SendText(g.GroupID, "⚖️ Nobody was executed today.")
		return
	}
	victim := g.playerByID(victimID)

	// Ledger effects of the vote, judged per voter before the execution:
	// hitting a wolf pays, hitting an innocent costs, silence costs more.
	for _, p := range g.alivePlayers() {
		targetID, voted := g.Votes[p.ID]
		if !voted {
			g.award(p, model.PointsDidntVote, model.ReasonDidntVote, 0)
			continue
		}
		if target := g.playerByID(targetID); target != nil {
			if target.Role.IsWolf() {
				g.award(p, model.PointsVotedWolf, model.ReasonVotedWolf, 0)
			} else {
				g.award(p, model.PointsVotedInnocent, model.ReasonVotedInnocent, 0)
			}
		}
	}

	victim.IsDead = true
	g.appendLog(fmt.Sprintf("%d,execute,%s,%s", g.Night, victim.ID, victim.Role.Name))
	g.messenger.SendText(g.GroupID, fmt.Sprintf("⚖️ The village executed @%s. They were *%s*.",
		victim.Mention(), victim.Role.Name), victim.ID)

	if victim.Role == model.R_TANNER {
		// Being voted out is exactly what the Tanner wanted.
		g.ForcedWin = model.W_TANNER
		g.messenger.SendText(g.GroupID, "🤡 The Tanner laughs from the gallows. This is all they ever wanted!")
		return
	}

	g.cascade(victim)
	g.promoteHunterQueue()
	slog.Info("day resolved", "id", g.ID, "executed", victim.ID, "pendingHunter", g.PendingHunter)
}
