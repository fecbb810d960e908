package logic

import (
	"testing"

	"github.com/garoulab/garou-bot/model"
)

func TestLoversWin(t *testing.T) {
	t.Log("two surviving mutual lovers win regardless of alignment")
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_SEER, model.R_VILLAGER)
	game.Players[0].Lover = pid(2)
	game.Players[1].Lover = pid(1)
	game.Players[2].IsDead = true
	game.Players[3].IsDead = true

	if winner := EvaluateWin(game.Players); winner != model.W_LOVERS {
		t.Fatalf("got %s, want LOVERS", winner)
	}
	winners := Winners(game.Players, model.W_LOVERS)
	if len(winners) != 2 {
		t.Fatalf("got %d winners, want 2", len(winners))
	}
}

func TestVillagersWinWhenWolvesAreGone(t *testing.T) {
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_SEER)
	game.Players[0].IsDead = true
	if winner := EvaluateWin(game.Players); winner != model.W_VILLAGERS {
		t.Fatalf("got %s, want VILLAGERS", winner)
	}
}

func TestWolvesWinAtParity(t *testing.T) {
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	game.Players[2].IsDead = true
	if winner := EvaluateWin(game.Players); winner != model.W_WOLVES {
		t.Fatalf("got %s, want WOLVES", winner)
	}
}

func TestGameContinuesWhileVillagersLead(t *testing.T) {
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_VILLAGER, model.R_VILLAGER)
	if winner := EvaluateWin(game.Players); winner != model.W_NONE {
		t.Fatalf("got %s, want NONE", winner)
	}
}

func TestEvaluateWinIsIdempotent(t *testing.T) {
	game, _, _ := newTestGame(model.R_ALPHAWOLF, model.R_VILLAGER, model.R_VILLAGER, model.R_SEER)
	game.Players[3].IsDead = true
	first := EvaluateWin(game.Players)
	second := EvaluateWin(game.Players)
	if first != second {
		t.Fatalf("evaluation not stable: %s then %s", first, second)
	}
}

func TestMadmanWinsWithWolves(t *testing.T) {
	game, _, _ := newTestGame(model.R_WEREWOLF, model.R_MADMAN, model.R_VILLAGER)
	winners := Winners(game.Players, model.W_WOLVES)
	if len(winners) != 2 {
		t.Fatalf("got %d winners, want wolf and madman", len(winners))
	}
}
