package core

import (
	"sync"

	"github.com/garoulab/garou-bot/logic"
)

// Registry holds at most one running game per group chat. Player exclusivity
// across groups is enforced here as well, since a single account cannot sit
// at two tables at once.
type Registry struct {
	mu    sync.Mutex
	games map[string]*logic.Game
}

func NewRegistry() *Registry {
	return &Registry{games: map[string]*logic.Game{}}
}

func (r *Registry) Get(groupID string) *logic.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[groupID]
}

func (r *Registry) Put(g *logic.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.GroupID] = g
}

func (r *Registry) Delete(groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, groupID)
}

// FindPlayerGroup returns the group of the game the player sits in, or ""
// when the player is in no game. Used both to route private commands and to
// refuse a second seat.
func (r *Registry) FindPlayerGroup(playerID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for group, g := range r.games {
		if g.HasPlayer(playerID) {
			return group
		}
	}
	return ""
}

// Count returns the number of running games.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// Snapshot returns the current games for read-only iteration.
func (r *Registry) Snapshot() []*logic.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*logic.Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g)
	}
	return out
}
