package logic

import (
	"fmt"
	"log/slog"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/util"
)

// protection is the layered defense applied to a night attack, strongest
// first: prostitute visit > doctor > witch heal.
type protection struct {
	kind      string
	protector *model.Player
}

func (g *Game) protectionFor(victimID string) *protection {
	if g.isProstituteGuarded(victimID) {
		visitor := util.FindPlayer(g.Players, func(p *model.Player) bool {
			return p.Role == model.R_PROSTITUTE
		})
		return &protection{kind: "prostitute", protector: visitor}
	}
	if g.DoctorChoice == victimID {
		doctor := util.FindPlayer(g.Players, func(p *model.Player) bool {
			return p.Role == model.R_DOCTOR
		})
		return &protection{kind: "doctor", protector: doctor}
	}
	if g.WitchHealArmed {
		witch := util.FindPlayer(g.Players, func(p *model.Player) bool {
			return p.Role == model.R_WITCH
		})
		return &protection{kind: "witch", protector: witch}
	}
	return nil
}

func (g *Game) creditProtection(p *protection) {
	if p.protector == nil {
		return
	}
	switch p.kind {
	case "prostitute":
		g.award(p.protector, model.PointsProstituteProtected, model.ReasonProstituteProtected, 0)
	case "doctor":
		g.award(p.protector, model.PointsDoctorProtected, model.ReasonDoctorProtected, 0)
	case "witch":
		g.award(p.protector, model.PointsWitchProtected, model.ReasonWitchProtected, 0)
	}
}

// cascade applies the side effects of a death that has just been marked:
// the ledger penalty, the lover's heartbreak (recursive), and queueing a
// dead hunter's retaliation. It never revisits an already-dead player, so
// any lover chain terminates.
func (g *Game) cascade(victim *model.Player) {
	g.award(victim, model.PointsDeathPenalty, model.ReasonDeathPenalty, 0)
	g.appendLog(fmt.Sprintf("%d,death,%s,%s", g.Night, victim.ID, victim.Role.Name))
	if victim.Role == model.R_HUNTER {
		g.HunterQueue = append(g.HunterQueue, victim.ID)
	}
	if victim.Lover == "" {
		return
	}
	partner := g.playerByID(victim.Lover)
	if partner == nil || partner.IsDead {
		return
	}
	partner.IsDead = true
	g.messenger.SendText(g.GroupID, fmt.Sprintf("💔 *%s* (@%s) died of heartbreak after losing their lover.",
		partner.Name, partner.Mention()), partner.ID)
	g.cascade(partner)
}

// ResolveNight computes the night's outcome from the collected choices.
// Precedence: serial killer, then pyromaniac, then the wolf attack with its
// protection layering and the alpha/hunter exceptions. Seer, poison and the
// prostitute's fate were already settled at action time.
func (g *Game) ResolveNight() {
	slog.Info("resolving night", "id", g.ID, "night", g.Night)
	g.NextPhase = model.P_DAY
	g.messenger.SendImage(g.GroupID, "sunrise", "☀️ The sun rises...")
	anyDeath := false

	// Serial killer hunts alone but runs into the same protections.
	if g.SerialChoice != "" {
		killer := util.FindPlayer(g.Players, func(p *model.Player) bool {
			return p.Role == model.R_SERIALKILLER && !p.IsDead
		})
		victim := g.livingPlayerByID(g.SerialChoice)
		if killer != nil && victim != nil {
			if shield := g.protectionFor(victim.ID); shield != nil {
				g.creditProtection(shield)
				g.messenger.SendText(g.GroupID, "🔪 Someone prowled in the dark, but their blade found only a locked door.")
			} else {
				victim.IsDead = true
				anyDeath = true
				g.messenger.SendText(g.GroupID, fmt.Sprintf("🔪 *%s* (@%s) was found butchered this morning...",
					victim.Name, victim.Mention()), victim.ID)
				g.cascade(victim)
			}
		}
	}

	// Pyromaniac: everyone soaked burns, except wolves, who shrug it off.
	// The oil is spent either way.
	if g.IgniteArmed {
		for _, oiledID := range g.OiledTargets {
			victim := g.livingPlayerByID(oiledID)
			if victim == nil || victim.Role.IsWolf() {
				continue
			}
			victim.IsDead = true
			anyDeath = true
			g.messenger.SendText(g.GroupID, fmt.Sprintf("🔥 *%s* (@%s) went up in flames during the night!",
				victim.Name, victim.Mention()), victim.ID)
			g.cascade(victim)
		}
		g.OiledTargets = nil
	}

	// Wolf attack.
	victimID, voteCount := util.Tally(g.WolfChoices, g.Players)
	if victimID == "" {
		if !anyDeath {
			g.messenger.SendText(g.GroupID, "☀️ Nobody died tonight.")
		}
	} else {
		victim := g.playerByID(victimID)
		switch {
		case victim.IsDead:
			// Already dead from the steps above; the attack fizzles.
			g.messenger.SendText(g.GroupID, "🐺 The wolves broke into their victim's home... and found a corpse already cold.")
		case g.isProstituteGuarded(victim.ID):
			shield := g.protectionFor(victim.ID)
			g.creditProtection(shield)
			g.ProstituteGuard = nil
			g.messenger.SendText(g.GroupID, "💄 The wolves' victim was too busy to open the door!\nNobody died.")
		case g.DoctorChoice == victim.ID:
			g.creditProtection(g.protectionFor(victim.ID))
			g.messenger.SendText(g.GroupID, "🐺 The wolves attacked,\nbut their victim was saved! 💉")
		case g.WitchHealArmed:
			g.creditProtection(&protection{kind: "witch", protector: util.FindPlayer(g.Players, func(p *model.Player) bool {
				return p.Role == model.R_WITCH
			})})
			g.messenger.SendText(g.GroupID, "🐺 The wolves attacked,\nbut their victim was shielded by magic! 🪄")
		default:
			g.resolveWolfAttack(victim, voteCount)
			anyDeath = true
		}
	}

	g.promoteHunterQueue()
	slog.Info("night resolved", "id", g.ID, "night", g.Night, "pendingHunter", g.PendingHunter)
}

// resolveWolfAttack lands an unprotected wolf attack, applying the alpha
// conversion and hunter reflex exceptions. Both require a solo attacker.
func (g *Game) resolveWolfAttack(victim *model.Player, voteCount int) {
	voters := util.VotersFor(g.WolfChoices, victim.ID)
	if len(voters) == 1 {
		attacker := g.playerByID(voters[0])
		if attacker != nil && attacker.Role == model.R_ALPHAWOLF && !g.AlphaConverted &&
			g.rng.Float64() < g.config.Game.Chances.AlphaConvert {
			g.AlphaConverted = true
			victim.Role = model.R_WEREWOLF
			victim.FakeRole = model.R_NONE
			g.appendLog(fmt.Sprintf("%d,convert,%s", g.Night, victim.ID))
			g.messenger.SendText(victim.ID, "🐺 The Alpha's bite did not kill you... it changed you. You are a Werewolf now.")
			g.messenger.SendText(g.GroupID, "☀️ Nobody died tonight. But something feels different...")
			return
		}
		if attacker != nil && victim.Role == model.R_HUNTER &&
			g.rng.Float64() < g.config.Game.Chances.HunterReflex {
			attacker.IsDead = true
			g.messenger.SendText(g.GroupID, fmt.Sprintf("🏹 A lone wolf attacked the Hunter...\nand met the silver bullet.\n*%s* (@%s) is dead!",
				attacker.Name, attacker.Mention()), attacker.ID)
			g.cascade(attacker)
			return
		}
	}
	victim.IsDead = true
	g.messenger.SendText(g.GroupID, fmt.Sprintf("@%s was killed during the night!", victim.Mention()), victim.ID)
	g.cascade(victim)
}

// promoteHunterQueue moves the next dead hunter into the pending sub-state
// and prompts them. Only one retaliation is processed at a time.
func (g *Game) promoteHunterQueue() {
	if g.PendingHunter != "" || len(g.HunterQueue) == 0 {
		return
	}
	hunterID := g.HunterQueue[0]
	g.HunterQueue = g.HunterQueue[1:]
	g.PendingHunter = hunterID
	g.HunterTarget = ""
	hunter := g.playerByID(hunterID)
	if hunter == nil {
		g.PendingHunter = ""
		return
	}
	g.messenger.SendText(hunter.ID, fmt.Sprintf("☠️ You are dying.\nSend *!shoot <victim number>* within %d seconds to take someone with you!",
		g.config.Game.HunterGraceSecs))
	g.sendRoster(hunter.ID, hunter, false)
	slog.Info("hunter pending", "id", g.ID, "hunter", hunterID)
}

// ConcludeHunter finishes the pending retaliation, either applying the shot
// or noting the silence, then promotes the next queued hunter if any.
func (g *Game) ConcludeHunter() {
	hunterID := g.PendingHunter
	g.PendingHunter = ""
	hunter := g.playerByID(hunterID)
	if hunter == nil {
		g.promoteHunterQueue()
		return
	}
	g.messenger.SendText(g.GroupID, fmt.Sprintf("@%s is dead...\nBut they were a Hunter 🏹", hunter.Mention()), hunter.ID)
	if g.HunterTarget == "" {
		g.messenger.SendText(g.GroupID, "🏹 The Hunter took no one down before dying.")
	} else {
		target := g.playerByID(g.HunterTarget)
		g.HunterTarget = ""
		if target != nil && !target.IsDead {
			target.IsDead = true
			g.messenger.SendText(g.GroupID, fmt.Sprintf("🏹 The dying Hunter shot *%s* (@%s)!",
				target.Name, target.Mention()), target.ID)
			if target.Role.IsWolf() {
				g.award(hunter, model.PointsHunterKillsWolf, model.ReasonHunterKillsWolf, 0)
			}
			g.cascade(target)
		}
	}
	g.promoteHunterQueue()
}
