package logic

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/service"
)

type sentMessage struct {
	to   string
	text string
}

type stubMessenger struct {
	sent    []sentMessage
	deleted []string
}

func (m *stubMessenger) SendText(to string, text string, mentions ...string) {
	m.sent = append(m.sent, sentMessage{to: to, text: text})
}

func (m *stubMessenger) SendImage(to string, image string, caption string, mentions ...string) {
	m.sent = append(m.sent, sentMessage{to: to, text: caption})
}

func (m *stubMessenger) DeleteLastMessage(to string) {
	m.deleted = append(m.deleted, to)
}

func (m *stubMessenger) received(to string, fragment string) bool {
	for _, message := range m.sent {
		if message.to == to && strings.Contains(message.text, fragment) {
			return true
		}
	}
	return false
}

type ledgerEntry struct {
	id     string
	delta  int
	reason string
}

type stubLedger struct {
	entries []ledgerEntry
}

func (l *stubLedger) GetPlayer(id string) (*service.LedgerRecord, error) {
	return nil, nil
}

func (l *stubLedger) AddPoints(id string, name string, delta int, reason string, gameInc int) error {
	l.entries = append(l.entries, ledgerEntry{id: id, delta: delta, reason: reason})
	return nil
}

func (l *stubLedger) TopPlayers(limit int) ([]service.LedgerRecord, error) {
	return nil, nil
}

func (l *stubLedger) countReason(id string, reason string) int {
	var count int
	for _, entry := range l.entries {
		if entry.id == id && entry.reason == reason {
			count++
		}
	}
	return count
}

// newTestGame builds a first-night game with one player per given role,
// addressed p1@s.net, p2@s.net and so on in roster order. The RNG is
// seeded; tests that depend on a chance branch pin the chance to 0 or 1.
func newTestGame(roles ...model.Role) (*Game, *stubMessenger, *stubLedger) {
	messenger := &stubMessenger{}
	ledger := &stubLedger{}
	game := &Game{
		ID:          "01TESTGAME0000000000000000",
		GroupID:     "table@g.us",
		Phase:       model.P_NIGHT,
		Night:       1,
		WolfChoices: make(map[string]string),
		Votes:       make(map[string]string),
		NextPhase:   model.P_DAY,
		ForcedWin:   model.W_NONE,
		config:      model.DefaultConfig(),
		messenger:   messenger,
		ledger:      ledger,
		rng:         rand.New(rand.NewSource(7)),
	}
	for i, role := range roles {
		game.Players = append(game.Players, &model.Player{
			ID:   fmt.Sprintf("p%d@s.net", i+1),
			Name: fmt.Sprintf("Player%d", i+1),
			Role: role,
		})
	}
	return game, messenger, ledger
}

func pid(number int) string {
	return fmt.Sprintf("p%d@s.net", number)
}
