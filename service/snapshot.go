package service

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotStore persists one serialized game per group so a process restart
// can resume mid-game instead of discarding a night's worth of actions.
// Timer state is never serialized; the engine re-arms timers on resume.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(groupID string) string {
	// Group ids contain '@' and ':'; flatten them for the filesystem.
	name := strings.NewReplacer("@", "_", ":", "_", "/", "_").Replace(groupID)
	return filepath.Join(s.dir, name+".json")
}

func (s *SnapshotStore) Save(groupID string, state any) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		slog.Error("failed to serialize game snapshot", "error", err, "group", groupID)
		return
	}
	if err := os.WriteFile(s.path(groupID), data, 0o644); err != nil {
		slog.Error("failed to write game snapshot", "error", err, "group", groupID)
	}
}

func (s *SnapshotStore) Delete(groupID string) {
	if err := os.Remove(s.path(groupID)); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to delete game snapshot", "error", err, "group", groupID)
	}
}

// LoadAll returns the raw snapshot of every persisted game.
func (s *SnapshotStore) LoadAll() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Error("failed to read snapshot directory", "error", err)
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			slog.Warn("failed to read snapshot file", "error", err, "file", entry.Name())
			continue
		}
		out[strings.TrimSuffix(entry.Name(), ".json")] = data
	}
	return out
}
