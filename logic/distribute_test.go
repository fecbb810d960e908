package logic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/garoulab/garou-bot/model"
)

func TestRoleCountInvariant(t *testing.T) {
	t.Log("every table size yields exactly n roles with a legal wolf count")
	rng := rand.New(rand.NewSource(11))
	for n := 4; n <= 24; n++ {
		roles := GenerateRoles(rng, n)
		if len(roles) != n {
			t.Fatalf("n=%d: got %d roles", n, len(roles))
		}
		if err := ValidateRoles(roles); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		var wolves int
		for _, role := range roles {
			if role == model.R_WEREWOLF {
				wolves++
			}
		}
		limit := int(math.Ceil(float64(n) / 3))
		if wolves < 1 || wolves > limit {
			t.Fatalf("n=%d: %d wolves, want 1..%d", n, wolves, limit)
		}
	}
}

func TestFourPlayerTable(t *testing.T) {
	t.Log("four players: one werewolf, three villagers, no specials")
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		distribution := RoleDistribution(rng, 4)
		if distribution[model.R_WEREWOLF] != 1 {
			t.Fatalf("got %d wolves", distribution[model.R_WEREWOLF])
		}
		if distribution[model.R_VILLAGER] != 3 {
			t.Fatalf("got %d villagers", distribution[model.R_VILLAGER])
		}
		for role, count := range distribution {
			if role != model.R_WEREWOLF && role != model.R_VILLAGER && count > 0 {
				t.Fatalf("unexpected %s in a 4 player game", role.Name)
			}
		}
	}
}

func TestDistributionThresholds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	d6 := RoleDistribution(rng, 6)
	if d6[model.R_SEER] != 1 || d6[model.R_HUNTER] != 1 {
		t.Fatalf("6 players should seat a seer and a hunter: %v", d6)
	}
	if d6[model.R_DOCTOR] != 0 {
		t.Fatal("doctor should not appear before 9 players")
	}
	d13 := RoleDistribution(rng, 13)
	if d13[model.R_WITCH] != 1 || d13[model.R_SERIALKILLER] != 1 || d13[model.R_PYROMANIAC] != 1 {
		t.Fatalf("13 players should seat witch, serial killer and pyromaniac: %v", d13)
	}
	var total int
	for _, count := range d13 {
		total += count
	}
	if total != 13 {
		t.Fatalf("distribution sums to %d, want 13", total)
	}
}

func TestExtraMadmanAboveSix(t *testing.T) {
	t.Log("above six players one non-wolf special slot becomes a second madman")
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		distribution := RoleDistribution(rng, 10)
		if distribution[model.R_MADMAN] != 2 {
			t.Fatalf("got %d madmen, want 2", distribution[model.R_MADMAN])
		}
	}
}

func TestValidateRolesRejectsWolflessTable(t *testing.T) {
	roles := []model.Role{model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER, model.R_VILLAGER}
	if err := ValidateRoles(roles); err == nil {
		t.Fatal("expected rejection without a wolf")
	}
	packed := []model.Role{model.R_WEREWOLF, model.R_WEREWOLF, model.R_WEREWOLF, model.R_VILLAGER}
	if err := ValidateRoles(packed); err == nil {
		t.Fatal("expected rejection with three wolves at a table of four")
	}
}

func TestAlphaUpgradeChanceBrackets(t *testing.T) {
	config := model.DefaultConfig()
	if got := AlphaUpgradeChance(config, 6); got != config.Game.Chances.AlphaUpgradeSmall {
		t.Fatalf("small bracket: got %v", got)
	}
	if got := AlphaUpgradeChance(config, 9); got != config.Game.Chances.AlphaUpgradeMid {
		t.Fatalf("mid bracket: got %v", got)
	}
	if got := AlphaUpgradeChance(config, 14); got != config.Game.Chances.AlphaUpgradeLarge {
		t.Fatalf("large bracket: got %v", got)
	}
}
