package logic

import (
	"testing"

	"github.com/garoulab/garou-bot/model"
)

func TestWolfVoteOverwrite(t *testing.T) {
	t.Log("a wolf resubmitting a kill keeps only the last target")
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	if err := game.WolfKill(pid(1), pid(2)); err != nil {
		t.Fatal(err)
	}
	if err := game.WolfKill(pid(1), pid(3)); err != nil {
		t.Fatal(err)
	}
	if len(game.WolfChoices) != 1 || game.WolfChoices[pid(1)] != pid(3) {
		t.Fatalf("choices = %v", game.WolfChoices)
	}
	game.ResolveNight()
	if game.Players[1].IsDead {
		t.Fatal("overwritten target died")
	}
	if !game.Players[2].IsDead {
		t.Fatal("final target survived")
	}
}

func TestDoctorSavesMajorityTarget(t *testing.T) {
	t.Log("wolves split 2-1; the doctor covers the majority target and nobody dies")
	game, messenger, ledger := newTestGame(
		model.R_WEREWOLF, model.R_WEREWOLF, model.R_WEREWOLF,
		model.R_DOCTOR, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.WolfKill(pid(1), pid(5)))
	mustOk(t, game.WolfKill(pid(2), pid(5)))
	mustOk(t, game.WolfKill(pid(3), pid(6)))
	mustOk(t, game.DoctorSave(pid(4), pid(5)))

	game.ResolveNight()
	if game.Players[4].IsDead || game.Players[5].IsDead {
		t.Fatal("someone died through the doctor's save")
	}
	if ledger.countReason(pid(4), model.ReasonDoctorProtected) != 1 {
		t.Fatal("doctor not credited")
	}
	if !messenger.received(game.GroupID, "saved") {
		t.Fatal("missing save announcement")
	}
}

func TestDoctorOutranksWitchHeal(t *testing.T) {
	t.Log("doctor and witch both cover the victim; only the doctor is credited")
	game, _, ledger := newTestGame(
		model.R_WEREWOLF, model.R_DOCTOR, model.R_WITCH, model.R_VILLAGER)
	mustOk(t, game.WolfKill(pid(1), pid(4)))
	mustOk(t, game.DoctorSave(pid(2), pid(4)))
	mustOk(t, game.WitchHeal(pid(3)))

	game.ResolveNight()
	if game.Players[3].IsDead {
		t.Fatal("victim died despite two layers of protection")
	}
	if ledger.countReason(pid(2), model.ReasonDoctorProtected) != 1 {
		t.Fatal("doctor not credited")
	}
	if ledger.countReason(pid(3), model.ReasonWitchProtected) != 0 {
		t.Fatal("witch credited alongside the doctor")
	}
}

func TestProstituteGuardBlocksWolves(t *testing.T) {
	game, messenger, _ := newTestGame(
		model.R_PROSTITUTE, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.ProstituteVisit(pid(1), pid(3)))
	mustOk(t, game.WolfKill(pid(2), pid(3)))

	game.ResolveNight()
	if game.Players[2].IsDead {
		t.Fatal("guarded client died")
	}
	if game.ProstituteGuard != nil {
		t.Fatal("guard not reset after the save")
	}
	if !messenger.received(game.GroupID, "too busy") {
		t.Fatal("missing guard announcement")
	}
}

func TestHunterReflexKillsLoneAttacker(t *testing.T) {
	game, _, _ := newTestGame(
		model.R_WEREWOLF, model.R_HUNTER, model.R_VILLAGER, model.R_VILLAGER)
	game.config.Game.Chances.HunterReflex = 1.0
	mustOk(t, game.WolfKill(pid(1), pid(2)))

	game.ResolveNight()
	if !game.Players[0].IsDead {
		t.Fatal("attacker survived the silver bullet")
	}
	if game.Players[1].IsDead {
		t.Fatal("hunter died despite the reflex")
	}
}

func TestAlphaConversionSparesVictimOnce(t *testing.T) {
	game, _, _ := newTestGame(
		model.R_ALPHAWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	game.config.Game.Chances.AlphaConvert = 1.0
	mustOk(t, game.WolfKill(pid(1), pid(2)))

	game.ResolveNight()
	if game.Players[1].IsDead {
		t.Fatal("victim died instead of turning")
	}
	if game.Players[1].Role != model.R_WEREWOLF {
		t.Fatalf("victim role = %s, want WEREWOLF", game.Players[1].Role.Name)
	}
	if !game.AlphaConverted {
		t.Fatal("conversion not consumed")
	}

	// The second night's solo attack must kill normally.
	game.BeginNight()
	mustOk(t, game.WolfKill(pid(1), pid(3)))
	game.ResolveNight()
	if !game.Players[2].IsDead {
		t.Fatal("second victim should die, the conversion is spent")
	}
}

func TestLoverCascadeTerminates(t *testing.T) {
	t.Log("killing one lover fells the partner exactly once")
	game, _, ledger := newTestGame(
		model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER)
	game.Players[1].Lover = pid(3)
	game.Players[2].Lover = pid(2)
	mustOk(t, game.WolfKill(pid(1), pid(2)))

	game.ResolveNight()
	if !game.Players[1].IsDead || !game.Players[2].IsDead {
		t.Fatal("lover pair should both be dead")
	}
	if game.Players[3].IsDead {
		t.Fatal("cascade reached an unrelated player")
	}
	if ledger.countReason(pid(2), model.ReasonDeathPenalty) != 1 ||
		ledger.countReason(pid(3), model.ReasonDeathPenalty) != 1 {
		t.Fatal("death penalty applied other than exactly once per death")
	}
}

func TestPendingHunterShootsWolfAndLover(t *testing.T) {
	t.Log("dying hunter shoots a wolf whose lover follows them down")
	game, _, ledger := newTestGame(
		model.R_WEREWOLF, model.R_HUNTER, model.R_VILLAGER, model.R_VILLAGER)
	game.config.Game.Chances.HunterReflex = 0
	game.Players[0].Lover = pid(4)
	game.Players[3].Lover = pid(1)
	mustOk(t, game.WolfKill(pid(1), pid(2)))

	game.ResolveNight()
	if game.PendingHunter != pid(2) {
		t.Fatalf("pending hunter = %q", game.PendingHunter)
	}
	mustOk(t, game.HunterShoot(pid(2), pid(1)))
	game.ConcludeHunter()

	if !game.Players[0].IsDead {
		t.Fatal("shot wolf survived")
	}
	if !game.Players[3].IsDead {
		t.Fatal("wolf's lover survived the cascade")
	}
	if game.PendingHunter != "" {
		t.Fatal("pending state not cleared")
	}
	if ledger.countReason(pid(2), model.ReasonHunterKillsWolf) != 1 {
		t.Fatal("hunter not credited for hitting a wolf")
	}
}

func TestHunterShootRejectedWithoutPendingState(t *testing.T) {
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_HUNTER, model.R_VILLAGER)
	if err := game.HunterShoot(pid(2), pid(1)); err == nil {
		t.Fatal("expected rejection, hunter is alive and well")
	}
}

func TestSerialKillerRunsIntoProtection(t *testing.T) {
	game, _, ledger := newTestGame(
		model.R_SERIALKILLER, model.R_DOCTOR, model.R_VILLAGER, model.R_WEREWOLF)
	mustOk(t, game.SerialKill(pid(1), pid(3)))
	mustOk(t, game.DoctorSave(pid(2), pid(3)))

	game.ResolveNight()
	if game.Players[2].IsDead {
		t.Fatal("protected target died to the serial killer")
	}
	if ledger.countReason(pid(2), model.ReasonDoctorProtected) != 1 {
		t.Fatal("doctor not credited")
	}
}

func TestWolfAttackFizzlesOnCorpse(t *testing.T) {
	t.Log("the wolves find their victim already killed by the serial killer")
	game, messenger, _ := newTestGame(
		model.R_SERIALKILLER, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.SerialKill(pid(1), pid(3)))
	mustOk(t, game.WolfKill(pid(2), pid(3)))

	game.ResolveNight()
	if !game.Players[2].IsDead {
		t.Fatal("victim should be dead")
	}
	if game.Players[3].IsDead {
		t.Fatal("bystander died")
	}
	if !messenger.received(game.GroupID, "already cold") {
		t.Fatal("missing fizzle announcement")
	}
}

func TestIgnitionSparesWolves(t *testing.T) {
	game, _, _ := newTestGame(
		model.R_PYROMANIAC, model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	mustOk(t, game.PyroOil(pid(1), pid(2)))
	mustOk(t, game.PyroOil(pid(1), pid(3)))
	mustOk(t, game.PyroIgnite(pid(1)))

	game.ResolveNight()
	if game.Players[1].IsDead {
		t.Fatal("wolves do not burn")
	}
	if !game.Players[2].IsDead {
		t.Fatal("oiled villager should burn")
	}
	if len(game.OiledTargets) != 0 {
		t.Fatal("oil not spent after ignition")
	}
}

func mustOk(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
