package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/garoulab/garou-bot/model"
)

// GameLogger accumulates one plain-text event log per game and writes it out
// when the game ends. Lines are comma separated: night number, event, args.
type GameLogger struct {
	logsData         map[string]*GameLog
	outputDir        string
	templateFilename string
}

type GameLog struct {
	id       string
	filename string
	logs     []string
}

func NewGameLogger(config *model.Config) *GameLogger {
	return &GameLogger{
		logsData:         make(map[string]*GameLog),
		outputDir:        config.GameLogger.OutputDir,
		templateFilename: config.GameLogger.Filename,
	}
}

func (g *GameLogger) TrackStartGame(id string, players []*model.Player) {
	logData := &GameLog{
		id:   id,
		logs: make([]string, 0),
	}
	for i, p := range players {
		logData.logs = append(logData.logs, fmt.Sprintf("0,player,%d,%s,%s", i+1, p.ID, p.Name))
	}
	filename := strings.ReplaceAll(g.templateFilename, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	logData.filename = filename
	g.logsData[id] = logData
}

func (g *GameLogger) AppendLog(id string, line string) {
	logData, exists := g.logsData[id]
	if !exists {
		return
	}
	logData.logs = append(logData.logs, line)
}

func (g *GameLogger) TrackEndGame(id string) {
	logData, exists := g.logsData[id]
	if !exists {
		return
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		slog.Error("failed to create game log directory", "error", err)
		return
	}
	path := filepath.Join(g.outputDir, logData.filename)
	content := strings.Join(logData.logs, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		slog.Error("failed to write game log", "error", err, "path", path)
		return
	}
	delete(g.logsData, id)
	slog.Info("game log written", "id", id, "path", path)
}
