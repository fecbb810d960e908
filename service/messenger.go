package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/garoulab/garou-bot/model"
	"github.com/gorilla/websocket"
)

// Messenger is the outbound half of the chat boundary. The engine narrates
// every state change through it and never reads back synchronously.
// Implementations absorb transport failures; the game must not care.
type Messenger interface {
	SendText(to string, text string, mentions ...string)
	SendImage(to string, image string, caption string, mentions ...string)
	DeleteLastMessage(to string)
}

// GatewayMessenger sends frames to the WhatsApp sidecar over its websocket.
// A small fixed delay between frames keeps the narrative readable and stays
// under the transport's rate limits.
type GatewayMessenger struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	pacing time.Duration
}

func NewGatewayMessenger(pacing time.Duration) *GatewayMessenger {
	return &GatewayMessenger{pacing: pacing}
}

// SetConn swaps the active gateway connection. The sidecar reconnects after
// transport drops; frames sent while no connection is attached are dropped.
func (m *GatewayMessenger) SetConn(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
}

func (m *GatewayMessenger) send(frame model.Outbound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		slog.Warn("no gateway connection, dropping frame", "type", frame.Type, "to", frame.To)
		return
	}
	if err := m.conn.WriteJSON(frame); err != nil {
		slog.Error("failed to send frame to gateway", "error", err, "to", frame.To)
		return
	}
	if m.pacing > 0 {
		time.Sleep(m.pacing)
	}
}

func (m *GatewayMessenger) SendText(to string, text string, mentions ...string) {
	m.send(model.Outbound{Type: model.O_TEXT, To: to, Text: text, Mentions: mentions})
}

func (m *GatewayMessenger) SendImage(to string, image string, caption string, mentions ...string) {
	m.send(model.Outbound{Type: model.O_IMAGE, To: to, Image: image, Caption: caption, Mentions: mentions})
}

func (m *GatewayMessenger) DeleteLastMessage(to string) {
	m.send(model.Outbound{Type: model.O_DELETE, To: to})
}
