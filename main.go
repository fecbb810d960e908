package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/garoulab/garou-bot/core"
	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/service"
	"github.com/joho/godotenv"
)

var (
	version  = "dev"
	revision = "unknown"
	build    = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment as-is")
	}
	core.SetVersion(version, revision, build)

	configPath := flag.String("c", "./config/default.yml", "path of config file")
	flag.Parse()
	config, err := model.LoadFromPath(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ledger, err := service.NewSQLLedger(config.Ledger.Path, config.Ledger.StartingBalance)
	if err != nil {
		slog.Error("failed to open ledger", "path", config.Ledger.Path, "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	var gameLogger *service.GameLogger
	if config.GameLogger.Enable {
		gameLogger = service.NewGameLogger(config)
	}
	var snapshots *service.SnapshotStore
	if config.Snapshot.Enable {
		snapshots, err = service.NewSnapshotStore(config.Snapshot.Dir)
		if err != nil {
			slog.Error("failed to open snapshot store", "dir", config.Snapshot.Dir, "error", err)
			os.Exit(1)
		}
	}

	messenger := service.NewGatewayMessenger(config.PacingDelay())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := core.NewEngine(config, messenger, ledger, gameLogger, snapshots, rng)
	server := core.NewServer(config, engine, messenger)
	server.Run()
}
