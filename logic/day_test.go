package logic

import (
	"testing"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/util"
)

func dayGame(roles ...model.Role) (*Game, *stubMessenger, *stubLedger) {
	game, messenger, ledger := newTestGame(roles...)
	game.Phase = model.P_DAY
	game.NextPhase = model.P_NIGHT
	return game, messenger, ledger
}

func TestTieBreakIsRosterOrder(t *testing.T) {
	t.Log("a split vote always falls on the earliest-joined target")
	game, _, _ := dayGame(
		model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	votes := map[string]string{
		pid(1): pid(3),
		pid(2): pid(4),
	}
	first, _ := util.Tally(votes, game.Players)
	for i := 0; i < 20; i++ {
		winner, count := util.Tally(votes, game.Players)
		if winner != first || count != 1 {
			t.Fatalf("tally not stable: %s/%d vs %s", winner, count, first)
		}
	}
	if first != pid(3) {
		t.Fatalf("tie broke to %s, want the lower roster index %s", first, pid(3))
	}
}

func TestExecutionAndVoteAwards(t *testing.T) {
	t.Log("wolf voters gain, innocent voters lose, silent players lose more")
	game, _, ledger := dayGame(
		model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.CastVote(pid(2), pid(1)))
	mustOk(t, game.CastVote(pid(3), pid(2)))
	// p4 stays silent, p1 stays silent.

	game.ResolveDay()
	if !game.Players[0].IsDead {
		t.Fatal("plurality target not executed")
	}
	if ledger.countReason(pid(2), model.ReasonVotedWolf) != 1 {
		t.Fatal("wolf voter not rewarded")
	}
	if ledger.countReason(pid(3), model.ReasonVotedInnocent) != 1 {
		t.Fatal("innocent voter not penalized")
	}
	if ledger.countReason(pid(4), model.ReasonDidntVote) != 1 {
		t.Fatal("silent player not penalized")
	}
	if ledger.countReason(pid(1), model.ReasonDidntVote) != 1 {
		t.Fatal("the victim was alive at tally time and skipped voting")
	}
}

func TestDeadPlayersEscapeVotePenalties(t *testing.T) {
	game, _, ledger := dayGame(
		model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	game.Players[3].IsDead = true
	mustOk(t, game.CastVote(pid(2), pid(1)))
	mustOk(t, game.CastVote(pid(3), pid(1)))

	game.ResolveDay()
	if ledger.countReason(pid(4), model.ReasonDidntVote) != 0 {
		t.Fatal("a dead player was penalized for not voting")
	}
}

func TestMayorCancelsTheVote(t *testing.T) {
	game, messenger, _ := dayGame(
		model.R_MAYOR, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.MayorStopVote(pid(1)))
	mustOk(t, game.CastVote(pid(2), pid(3)))

	game.ResolveDay()
	if game.Players[2].IsDead {
		t.Fatal("someone was executed through a cancelled vote")
	}
	if game.VotesStopped {
		t.Fatal("stop-vote flag should reset after use")
	}
	if !messenger.received(game.GroupID, "cancelled") {
		t.Fatal("missing cancellation announcement")
	}
	if err := game.MayorStopVote(pid(1)); err == nil {
		t.Fatal("the power is one-shot")
	}
}

func TestTannerExecutionEndsTheGame(t *testing.T) {
	t.Log("voting the tanner out is an immediate solo win")
	game, _, _ := dayGame(
		model.R_TANNER, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.CastVote(pid(2), pid(1)))
	mustOk(t, game.CastVote(pid(3), pid(1)))

	game.ResolveDay()
	if !game.Players[0].IsDead {
		t.Fatal("tanner not executed")
	}
	if game.ForcedWin != model.W_TANNER {
		t.Fatalf("forced win = %s, want TANNER", game.ForcedWin)
	}
}

func TestExecutedHunterGetsTheirShot(t *testing.T) {
	game, _, _ := dayGame(
		model.R_HUNTER, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.CastVote(pid(2), pid(1)))
	mustOk(t, game.CastVote(pid(3), pid(1)))

	game.ResolveDay()
	if game.PendingHunter != pid(1) {
		t.Fatalf("pending hunter = %q", game.PendingHunter)
	}
}

func TestChangingVoteCostsAPoint(t *testing.T) {
	game, _, ledger := dayGame(
		model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.CastVote(pid(2), pid(1)))
	mustOk(t, game.CastVote(pid(2), pid(3)))
	mustOk(t, game.CastVote(pid(2), pid(3)))

	if ledger.countReason(pid(2), model.ReasonChangeVotePenalty) != 1 {
		t.Fatal("switching targets should cost exactly one penalty")
	}
}

func TestNobodyExecutedWithoutVotes(t *testing.T) {
	game, messenger, _ := dayGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	game.ResolveDay()
	for _, p := range game.Players {
		if p.IsDead {
			t.Fatal("someone died without a single vote")
		}
	}
	if !messenger.received(game.GroupID, "Nobody was executed") {
		t.Fatal("missing empty-tally announcement")
	}
}
