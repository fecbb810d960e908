package model

import "fmt"

// Player is one participant of one game. The ID is the chat address and is
// the cross-game identity key; the same address can never sit in two games.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsDead   bool   `json:"isDead"`
	Role     Role   `json:"role"`
	FakeRole Role   `json:"fakeRole"` // MADMAN only, cosmetic
	Lover    string `json:"lover"`    // symmetric back-reference, set by Cupid

	// Per-game point deltas, for the end-of-game summary only. The ledger
	// of record lives in service.Ledger.
	Points []PointDelta `json:"points"`
}

type PointDelta struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (p *Player) AddPoints(delta int, reason string) {
	p.Points = append(p.Points, PointDelta{Delta: delta, Reason: reason})
}

func (p *Player) PointTotal() int {
	var total int
	for _, d := range p.Points {
		total += d.Delta
	}
	return total
}

// VisibleRole is what a Seer-style reveal or the night prompt shows. The
// Madman's true role is hidden behind its fake one for the whole game.
func (p *Player) VisibleRole() Role {
	if p.Role == R_MADMAN && p.FakeRole != R_NONE {
		return p.FakeRole
	}
	return p.Role
}

// Mention is the @-handle form of the player's address.
func (p *Player) Mention() string {
	for i := range p.ID {
		if p.ID[i] == '@' {
			return p.ID[:i]
		}
	}
	return p.ID
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (@%s)", p.Name, p.Mention())
}
