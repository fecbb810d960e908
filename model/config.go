package model

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		HTTP struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
		} `yaml:"http"`
		Authentication struct {
			Enable bool   `yaml:"enable"`
			Secret string `yaml:"secret"`
		} `yaml:"authentication"`
	} `yaml:"server"`
	Game struct {
		MinPlayers       int         `yaml:"min_players"`
		Waiting          PhaseTiming `yaml:"waiting"`
		Night            PhaseTiming `yaml:"night"`
		Day              DayTiming   `yaml:"day"`
		HunterGraceSecs  int         `yaml:"hunter_grace"`
		PacingDelayMills int         `yaml:"pacing_delay_ms"`
		Chances          struct {
			AlphaUpgradeSmall float64 `yaml:"alpha_upgrade_small"`
			AlphaUpgradeMid   float64 `yaml:"alpha_upgrade_mid"`
			AlphaUpgradeLarge float64 `yaml:"alpha_upgrade_large"`
			AlphaConvert      float64 `yaml:"alpha_convert"`
			HunterReflex      float64 `yaml:"hunter_reflex"`
			PoisonMisfire     float64 `yaml:"poison_misfire"`
		} `yaml:"chances"`
	} `yaml:"game"`
	Ledger struct {
		Path            string `yaml:"path"`
		StartingBalance int    `yaml:"starting_balance"`
	} `yaml:"ledger"`
	Snapshot struct {
		Enable bool   `yaml:"enable"`
		Dir    string `yaml:"dir"`
	} `yaml:"snapshot"`
	GameLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"game_logger"`
	OperatorAddress string `yaml:"operator_address"`
}

// PhaseTiming is a fixed deadline plus purely-informational reminder offsets
// measured from the phase start. All values are seconds.
type PhaseTiming struct {
	DeadlineSecs int   `yaml:"deadline"`
	ReminderSecs []int `yaml:"reminders"`
}

func (t PhaseTiming) Deadline() time.Duration {
	return time.Duration(t.DeadlineSecs) * time.Second
}

func (t PhaseTiming) Reminders() []time.Duration {
	out := make([]time.Duration, 0, len(t.ReminderSecs))
	for _, s := range t.ReminderSecs {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

// DayTiming scales the day deadline with the number of players still alive,
// clamped to [Min, Max]. All values are seconds.
type DayTiming struct {
	BaseSecs      int   `yaml:"base"`
	PerPlayerSecs int   `yaml:"per_player"`
	MinSecs       int   `yaml:"min"`
	MaxSecs       int   `yaml:"max"`
	ReminderSecs  []int `yaml:"reminders"`
}

// Deadline computes the day duration for the given alive count.
func (d DayTiming) Deadline(alive int) time.Duration {
	secs := d.BaseSecs + alive*d.PerPlayerSecs
	if secs < d.MinSecs {
		secs = d.MinSecs
	}
	if secs > d.MaxSecs {
		secs = d.MaxSecs
	}
	return time.Duration(secs) * time.Second
}

func (d DayTiming) Reminders() []time.Duration {
	out := make([]time.Duration, 0, len(d.ReminderSecs))
	for _, s := range d.ReminderSecs {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

func (c *Config) HunterGrace() time.Duration {
	return time.Duration(c.Game.HunterGraceSecs) * time.Second
}

func (c *Config) PacingDelay() time.Duration {
	return time.Duration(c.Game.PacingDelayMills) * time.Millisecond
}

func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read config file", "error", err)
		return nil, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("failed to parse config file", "error", err)
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the timings and chances the bot ships with. Tests
// use it directly so they do not depend on a config file.
func DefaultConfig() *Config {
	var config Config
	config.Game.MinPlayers = 4
	config.Game.Waiting = PhaseTiming{
		DeadlineSecs: 180,
		ReminderSecs: []int{120, 150, 165},
	}
	config.Game.Night = PhaseTiming{
		DeadlineSecs: 90,
		ReminderSecs: []int{30, 60, 75},
	}
	config.Game.Day = DayTiming{
		BaseSecs:      60,
		PerPlayerSecs: 10,
		MinSecs:       90,
		MaxSecs:       180,
		ReminderSecs:  []int{60, 90, 120},
	}
	config.Game.HunterGraceSecs = 45
	config.Game.PacingDelayMills = 500
	config.Game.Chances.AlphaUpgradeSmall = 0.35
	config.Game.Chances.AlphaUpgradeMid = 0.55
	config.Game.Chances.AlphaUpgradeLarge = 0.45
	config.Game.Chances.AlphaConvert = 0.4
	config.Game.Chances.HunterReflex = 0.3
	config.Game.Chances.PoisonMisfire = 0.15
	config.Ledger.Path = "data/ledger.db"
	config.Ledger.StartingBalance = 10
	config.Snapshot.Dir = "data/games"
	return &config
}
