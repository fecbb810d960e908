package logic

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/garoulab/garou-bot/model"
)

// RejectError is a user error: wrong phase, wrong role, dead actor, bad
// target, exhausted ability. It carries the reply for the actor and is
// never logged as a system fault; state is untouched when it is returned.
type RejectError struct {
	Reply string
}

func (e *RejectError) Error() string {
	return e.Reply
}

func Reject(reply string) error {
	return &RejectError{Reply: reply}
}

func IsReject(err error) (*RejectError, bool) {
	var reject *RejectError
	if errors.As(err, &reject) {
		return reject, true
	}
	return nil, false
}

var ErrNotEnoughPlayers = errors.New("not enough players")

// requireNightActor validates the shared preconditions of night actions:
// right phase, actor known, alive, and holding one of the given roles.
func (g *Game) requireNightActor(actorID string, roles ...model.Role) (*model.Player, error) {
	if g.Phase != model.P_NIGHT {
		return nil, Reject("⚠️ That is not possible right now.")
	}
	actor := g.playerByID(actorID)
	if actor == nil || actor.IsDead {
		return nil, Reject("⚠️ You are not allowed to do that.")
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return nil, Reject("⚠️ You are not allowed to do that.")
}

// enforcePolicy applies the role's repeated-submission rules from the
// capability table. submitted means a choice is already recorded tonight,
// spent means the one-shot ability was already used this game.
func enforcePolicy(action model.NightAction, submitted bool, spent bool, reply string) error {
	policy := action.Policy()
	switch {
	case policy.Overwritable:
		return nil
	case policy.OncePerGame && spent:
		return Reject(reply)
	case policy.OncePerNight && submitted:
		return Reject(reply)
	}
	return nil
}

// WolfKill records a werewolf's kill vote. Resubmitting overwrites the
// previous choice; wolves may change their mind until the deadline.
func (g *Game) WolfKill(wolfID string, targetID string) error {
	wolf, err := g.requireNightActor(wolfID, model.R_WEREWOLF, model.R_ALPHAWOLF)
	if err != nil {
		return err
	}
	if err := enforcePolicy(wolf.Role.Action, g.WolfChoices[wolf.ID] != "", false, "⚠️ You already picked a victim."); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	if target.Role.IsWolf() {
		return Reject("⚠️ You cannot kill a wolf 🐺.")
	}
	if target.ID == wolf.ID {
		return Reject("⚠️ You cannot kill yourself 😑.")
	}
	g.WolfChoices[wolf.ID] = target.ID
	g.appendLog(fmt.Sprintf("%d,wolfvote,%s,%s", g.Night, wolf.ID, target.ID))
	// Flavor for the group; the target stays secret.
	g.messenger.SendText(g.GroupID, "🐺 The werewolves are howling at the moon.")
	g.messenger.SendText(wolf.ID, fmt.Sprintf("✅ You picked *%s* (@%s) as your victim.", target.Name, target.Mention()), target.ID)
	return nil
}

// SeerInspect reveals whether the target is a wolf. Once per night, no
// takebacks: the answer is already out.
func (g *Game) SeerInspect(seerID string, targetID string) error {
	seer, err := g.requireNightActor(seerID, model.R_SEER)
	if err != nil {
		return err
	}
	if err := enforcePolicy(seer.Role.Action, g.SeerChoice != "", false, "⚠️ You may use your gift only once per night."); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	g.SeerChoice = target.ID
	g.appendLog(fmt.Sprintf("%d,see,%s,%s", g.Night, seer.ID, target.ID))

	verdict := "not a Werewolf"
	if target.Role.IsWolf() || g.isSeerFakeWolf(target.ID) {
		verdict = "a 🐺 Werewolf"
	}
	g.messenger.SendText(seer.ID, fmt.Sprintf("🔮 Result:\n*%s* (@%s) is %s.", target.Name, target.Mention(), verdict), target.ID)
	return nil
}

func (g *Game) isSeerFakeWolf(id string) bool {
	for _, fake := range g.SeerFakeWolves {
		if fake == id {
			return true
		}
	}
	return false
}

// DoctorSave protects one player from tonight's attacks. Overwritable; the
// previous patient loses the protection.
func (g *Game) DoctorSave(doctorID string, targetID string) error {
	doctor, err := g.requireNightActor(doctorID, model.R_DOCTOR)
	if err != nil {
		return err
	}
	if err := enforcePolicy(doctor.Role.Action, g.DoctorChoice != "", false, "⚠️ You already chose a patient."); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	if target.ID == doctor.ID {
		return Reject("⚠️ You cannot protect yourself.")
	}
	if g.DoctorChoice != "" && g.DoctorChoice != target.ID {
		if previous := g.playerByID(g.DoctorChoice); previous != nil {
			g.messenger.SendText(doctor.ID, fmt.Sprintf("⚠️ %s is no longer protected.", previous.Name))
		}
	}
	g.DoctorChoice = target.ID
	g.appendLog(fmt.Sprintf("%d,save,%s,%s", g.Night, doctor.ID, target.ID))
	g.messenger.SendText(doctor.ID, fmt.Sprintf("💉 You chose to protect *%s* (@%s) tonight.", target.Name, target.Mention()), target.ID)
	return nil
}

// WitchHeal arms the one-shot heal: whoever the wolves hit tonight is saved.
func (g *Game) WitchHeal(witchID string) error {
	witch, err := g.requireNightActor(witchID, model.R_WITCH)
	if err != nil {
		return err
	}
	if err := enforcePolicy(witch.Role.Action, false, g.WitchHealUsed, "⚠️ You already brewed your healing potion."); err != nil {
		return err
	}
	g.WitchHealArmed = true
	g.WitchHealUsed = true
	g.appendLog(fmt.Sprintf("%d,heal,%s", g.Night, witch.ID))
	g.messenger.SendText(witch.ID, "🧪 You will save tonight's victim.")
	return nil
}

// WitchPoison kills the target immediately, subject to the same protection
// checks as a wolf attack, plus a small misfire chance. One shot per game.
func (g *Game) WitchPoison(witchID string, targetID string) error {
	witch, err := g.requireNightActor(witchID, model.R_WITCH)
	if err != nil {
		return err
	}
	if err := enforcePolicy(witch.Role.Action, false, g.WitchPoisonUsed, "⚠️ You already used your poison."); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	if target.ID == witch.ID {
		return Reject("⚠️ You cannot poison yourself.")
	}
	g.WitchPoisonUsed = true
	g.appendLog(fmt.Sprintf("%d,poison,%s,%s", g.Night, witch.ID, target.ID))

	if g.isProstituteGuarded(target.ID) || g.DoctorChoice == target.ID {
		g.messenger.SendText(witch.ID, "🧪 Your poison had no effect... someone was watching over them.")
		return nil
	}
	if g.rng.Float64() < g.config.Game.Chances.PoisonMisfire {
		g.messenger.SendText(witch.ID, "🧪 The vial slipped and shattered. The poison is wasted.")
		return nil
	}
	target.IsDead = true
	if target.Role.IsWolf() {
		g.award(witch, model.PointsWitchPoisonWolf, model.ReasonWitchPoisonWolf, 0)
	}
	g.messenger.SendText(g.GroupID, fmt.Sprintf("🧪 The Witch poisoned *%s* (@%s) during the night!", target.Name, target.Mention()), target.ID)
	g.cascade(target)
	return nil
}

// CupidPair links two lovers. First night only, once per game, and a player
// can never be re-linked.
func (g *Game) CupidPair(cupidID string, firstID string, secondID string) error {
	cupid, err := g.requireNightActor(cupidID, model.R_CUPID)
	if err != nil {
		return err
	}
	if g.Night != 1 {
		return Reject("⚠️ You could only link two lovers on the first night.\nYou are a plain villager now.")
	}
	if err := enforcePolicy(cupid.Role.Action, false, g.CupidUsed, "⚠️ You could only link two lovers on the first night.\nYou are a plain villager now."); err != nil {
		return err
	}
	first := g.livingPlayerByID(firstID)
	second := g.livingPlayerByID(secondID)
	if first == nil || second == nil || first.ID == second.ID {
		return Reject("⚠️ Invalid lovers.")
	}
	if first.Lover != "" || second.Lover != "" {
		return Reject("⚠️ One of them already has a lover.")
	}
	g.CupidUsed = true
	first.Lover = second.ID
	second.Lover = first.ID
	g.appendLog(fmt.Sprintf("%d,love,%s,%s", g.Night, first.ID, second.ID))
	if first.Role.IsWolf() || second.Role.IsWolf() {
		g.award(cupid, model.PointsCupidLinkWolf, model.ReasonCupidLinkWolf, 0)
	}
	g.messenger.SendText(cupid.ID, fmt.Sprintf("❤️ You linked %s and %s as lovers.", first.Name, second.Name))
	g.messenger.SendText(first.ID, fmt.Sprintf("❤️ You are in love with *%s* (@%s).", second.Name, second.Mention()), second.ID)
	g.messenger.SendText(second.ID, fmt.Sprintf("❤️ You are in love with *%s* (@%s).", first.Name, first.Mention()), first.ID)
	return nil
}

// ProstituteVisit spends the night at the target's place. Visiting a wolf
// is immediately fatal; otherwise both visitor and client are safe from the
// night's attacks and the visitor reads as a wolf to the seer.
func (g *Game) ProstituteVisit(visitorID string, targetID string) error {
	visitor, err := g.requireNightActor(visitorID, model.R_PROSTITUTE)
	if err != nil {
		return err
	}
	if err := enforcePolicy(visitor.Role.Action, g.ProstituteChoice != "", false, "⚠️ You cannot visit again, ékié!\nTwo clients in one night?"); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil || target.ID == visitor.ID {
		return Reject("⚠️ Invalid target.")
	}
	g.ProstituteChoice = target.ID
	g.appendLog(fmt.Sprintf("%d,visit,%s,%s", g.Night, visitor.ID, target.ID))
	g.messenger.SendText(visitor.ID, fmt.Sprintf("✅ You visited *%s* (@%s).", target.Name, target.Mention()), target.ID)

	if target.Role.IsWolf() {
		visitor.IsDead = true
		g.messenger.SendText(visitor.ID, "⚠️ You visited a werewolf and did not survive the night!")
		g.messenger.SendText(g.GroupID, "💄 The Prostitute visited a werewolf and is dead!", visitor.ID)
		g.cascade(visitor)
		return nil
	}
	g.ProstituteGuard = []string{visitor.ID, target.ID}
	g.SeerFakeWolves = append(g.SeerFakeWolves, visitor.ID)
	return nil
}

func (g *Game) isProstituteGuarded(id string) bool {
	for _, guarded := range g.ProstituteGuard {
		if guarded == id {
			return true
		}
	}
	return false
}

// MayorStopVote arms the one-shot vote cancellation. Usable from any phase;
// it takes effect when the current or next day resolves.
func (g *Game) MayorStopVote(mayorID string) error {
	mayor := g.playerByID(mayorID)
	if mayor == nil || mayor.Role != model.R_MAYOR || mayor.IsDead {
		return Reject("⚠️ You cannot stop the vote.")
	}
	if err := enforcePolicy(mayor.Role.Action, false, g.MayorPowerUsed, "⚠️ You already used your power."); err != nil {
		return err
	}
	g.MayorPowerUsed = true
	g.VotesStopped = true
	g.appendLog(fmt.Sprintf("%d,stopvote,%s", g.Night, mayor.ID))
	g.messenger.SendText(mayor.ID, "✋ You stopped today's vote.\nThey don't know it yet, but their ballots are worthless 🤫")
	return nil
}

// HunterShoot is the deferred retaliation of a dying hunter. Only valid
// while that hunter is the pending one.
func (g *Game) HunterShoot(hunterID string, targetID string) error {
	if g.PendingHunter == "" || g.PendingHunter != hunterID {
		return Reject("⚠️ You have no shot to take.")
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	g.HunterTarget = target.ID
	g.appendLog(fmt.Sprintf("%d,shoot,%s,%s", g.Night, hunterID, target.ID))
	g.messenger.SendText(hunterID, "👍 Your target has been taken down.")
	return nil
}

// SerialKill records the serial killer's independent target. Overwritable
// like the wolves' vote, but resolved on its own, before theirs.
func (g *Game) SerialKill(killerID string, targetID string) error {
	killer, err := g.requireNightActor(killerID, model.R_SERIALKILLER)
	if err != nil {
		return err
	}
	if err := enforcePolicy(killer.Role.Action, g.SerialChoice != "", false, "⚠️ You already picked tonight's victim."); err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid target.")
	}
	if target.ID == killer.ID {
		return Reject("⚠️ You cannot kill yourself 😑.")
	}
	g.SerialChoice = target.ID
	g.appendLog(fmt.Sprintf("%d,serialkill,%s,%s", g.Night, killer.ID, target.ID))
	g.messenger.SendText(killer.ID, fmt.Sprintf("🔪 *%s* (@%s) will not see the sunrise.", target.Name, target.Mention()), target.ID)
	return nil
}

// MadmanFake acknowledges a madman acting out its cosmetic role. Nothing is
// recorded and no game state changes; the madman just believes it worked.
func (g *Game) MadmanFake(actorID string, target *model.Player) error {
	actor := g.playerByID(actorID)
	if actor == nil || actor.IsDead || actor.Role != model.R_MADMAN {
		return Reject("⚠️ You are not allowed to do that.")
	}
	if actor.FakeRole != model.R_MAYOR && g.Phase != model.P_NIGHT {
		return Reject("⚠️ That is not possible right now.")
	}
	switch actor.FakeRole {
	case model.R_SEER:
		if target == nil || target.IsDead {
			return Reject("⚠️ Invalid target.")
		}
		verdict := "not a Werewolf"
		if g.rng.Float64() < 0.3 {
			verdict = "a 🐺 Werewolf"
		}
		g.messenger.SendText(actor.ID, fmt.Sprintf("🔮 Result:\n*%s* (@%s) is %s.", target.Name, target.Mention(), verdict), target.ID)
	case model.R_PROSTITUTE:
		if target == nil || target.IsDead || target.ID == actor.ID {
			return Reject("⚠️ Invalid target.")
		}
		g.messenger.SendText(actor.ID, fmt.Sprintf("✅ You visited *%s* (@%s).", target.Name, target.Mention()), target.ID)
	case model.R_MAYOR:
		g.messenger.SendText(actor.ID, "✋ You stopped today's vote.\nThey don't know it yet, but their ballots are worthless 🤫")
	default:
		return Reject("⚠️ You are not allowed to do that.")
	}
	return nil
}

// CastVote records a day vote. Overwritable, but changing your mind costs a
// point.
func (g *Game) CastVote(voterID string, targetID string) error {
	if g.Phase != model.P_DAY {
		return Reject("⚠️ There is no vote running.")
	}
	voter := g.playerByID(voterID)
	if voter == nil || voter.IsDead {
		return Reject("⚠️ You cannot vote.")
	}
	target := g.livingPlayerByID(targetID)
	if target == nil {
		return Reject("⚠️ Invalid vote target.")
	}
	if previous, ok := g.Votes[voter.ID]; ok && previous != target.ID {
		g.award(voter, model.PointsChangeVotePenalty, model.ReasonChangeVotePenalty, 0)
	}
	g.Votes[voter.ID] = target.ID
	g.appendLog(fmt.Sprintf("%d,vote,%s,%s", g.Night, voter.ID, target.ID))
	g.messenger.SendText(g.GroupID, fmt.Sprintf("✅ *%s* (@%s) voted against *%s* (@%s).",
		voter.Name, voter.Mention(), target.Name, target.Mention()), voter.ID, target.ID)
	return nil
}

// PyroOil soaks a target in oil. At most two players can be soaked at once;
// the set persists across nights until ignited.
func (g *Game) PyroOil(pyroID string, targetID string) error {
	pyro, err := g.requireNightActor(pyroID, model.R_PYROMANIAC)
	if err != nil {
		return err
	}
	target := g.livingPlayerByID(targetID)
	if target == nil || target.ID == pyro.ID {
		return Reject("⚠️ Invalid target.")
	}
	for _, oiled := range g.OiledTargets {
		if oiled == target.ID {
			return Reject("⚠️ They are already soaked.")
		}
	}
	if len(g.OiledTargets) >= 2 {
		return Reject("⚠️ You only carry enough oil for two.")
	}
	g.OiledTargets = append(g.OiledTargets, target.ID)
	g.appendLog(fmt.Sprintf("%d,oil,%s,%s", g.Night, pyro.ID, target.ID))
	g.messenger.SendText(pyro.ID, fmt.Sprintf("🛢️ You soaked *%s* (@%s) in oil.", target.Name, target.Mention()), target.ID)
	return nil
}

// PyroIgnite arms this night's ignition of every oiled player.
func (g *Game) PyroIgnite(pyroID string) error {
	pyro, err := g.requireNightActor(pyroID, model.R_PYROMANIAC)
	if err != nil {
		return err
	}
	if len(g.OiledTargets) == 0 {
		return Reject("⚠️ Nobody is soaked in oil yet.")
	}
	if err := enforcePolicy(pyro.Role.Action, g.IgniteArmed, false, "⚠️ The match is already lit."); err != nil {
		return err
	}
	g.IgniteArmed = true
	g.appendLog(fmt.Sprintf("%d,ignite,%s", g.Night, pyro.ID))
	g.messenger.SendText(pyro.ID, "🔥 Tonight, everything burns.")
	return nil
}

// PenalizeDeadSpeaker applies the moderation penalty for a dead player (or
// anyone at night) talking in the group. Not a game-state mutation.
func (g *Game) PenalizeDeadSpeaker(playerID string) {
	player := g.playerByID(playerID)
	if player == nil {
		return
	}
	g.award(player, model.PointsSpeakWhileDead, model.ReasonSpeakWhileDead, 0)
	g.messenger.DeleteLastMessage(g.GroupID)
	g.messenger.SendText(g.GroupID, fmt.Sprintf("🤫 The dead don't speak, @%s. That costs you %d point.",
		player.Mention(), model.PointsSpeakWhileDead), player.ID)
	slog.Info("dead speaker penalized", "id", g.ID, "player", playerID)
}
