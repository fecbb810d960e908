package service

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Ledger is the persistent points store shared by every group a player has
// ever joined. The in-game point list on model.Player is a display cache;
// this is the record of truth.
type Ledger interface {
	GetPlayer(id string) (*LedgerRecord, error)
	AddPoints(id string, name string, delta int, reason string, gameInc int) error
	TopPlayers(limit int) ([]LedgerRecord, error)
}

type LedgerRecord struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Points      int    `db:"points"`
	GamesPlayed int    `db:"games_played"`
}

type SQLLedger struct {
	db              *sqlx.DB
	startingBalance int
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	points INTEGER NOT NULL DEFAULT 0,
	games_played INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id TEXT NOT NULL,
	delta INTEGER NOT NULL,
	reason TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

func NewSQLLedger(path string, startingBalance int) (*SQLLedger, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLLedger{db: db, startingBalance: startingBalance}, nil
}

func (l *SQLLedger) Close() error {
	return l.db.Close()
}

func (l *SQLLedger) GetPlayer(id string) (*LedgerRecord, error) {
	var record LedgerRecord
	err := l.db.Get(&record, `SELECT id, name, points, games_played FROM players WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AddPoints creates the player record with the starting balance on first
// contact, then applies the delta. Read-modify-write runs in one transaction
// so two groups crediting the same player cannot drop an update.
func (l *SQLLedger) AddPoints(id string, name string, delta int, reason string, gameInc int) error {
	tx, err := l.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var record LedgerRecord
	err = tx.Get(&record, `SELECT id, name, points, games_played FROM players WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.Exec(`INSERT INTO players (id, name, points, games_played) VALUES (?, ?, ?, 0)`,
			id, name, l.startingBalance); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE players SET points = points + ?, games_played = games_played + ?, name = ? WHERE id = ?`,
		delta, gameInc, name, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO ledger_entries (player_id, delta, reason) VALUES (?, ?, ?)`,
		id, delta, reason); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("ledger updated", "player", id, "delta", delta, "reason", reason)
	return nil
}

// TopPlayers returns the highest scoring records for the scoreboard command.
func (l *SQLLedger) TopPlayers(limit int) ([]LedgerRecord, error) {
	var records []LedgerRecord
	err := l.db.Select(&records, `SELECT id, name, points, games_played FROM players ORDER BY points DESC LIMIT ?`, limit)
	return records, err
}
