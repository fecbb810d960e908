package core

import (
	"strings"

	"github.com/garoulab/garou-bot/service"
)

type sentMessage struct {
	to   string
	text string
}

type stubMessenger struct {
	sent []sentMessage
}

func (m *stubMessenger) SendText(to string, text string, mentions ...string) {
	m.sent = append(m.sent, sentMessage{to: to, text: text})
}

func (m *stubMessenger) SendImage(to string, image string, caption string, mentions ...string) {
	m.sent = append(m.sent, sentMessage{to: to, text: caption})
}

func (m *stubMessenger) DeleteLastMessage(to string) {}

func (m *stubMessenger) received(to string, fragment string) bool {
	for _, message := range m.sent {
		if message.to == to && strings.Contains(message.text, fragment) {
			return true
		}
	}
	return false
}

type stubLedger struct{}

func (l *stubLedger) GetPlayer(id string) (*service.LedgerRecord, error) { return nil, nil }

func (l *stubLedger) AddPoints(id string, name string, delta int, reason string, gameInc int) error {
	return nil
}

func (l *stubLedger) TopPlayers(limit int) ([]service.LedgerRecord, error) { return nil, nil }
