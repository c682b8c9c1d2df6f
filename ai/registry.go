package ai

import (
	"sync"

	"github.com/google/uuid"

	"github.com/milk9111/horde/ecs"
)

// PlayerInfo describes a player as seen by agents.
type PlayerInfo struct {
	ID       uuid.UUID
	Name     string
	Collider ecs.Entity
	Body     ecs.Entity
}

// Registry maps body and collider handles to the agents and players that
// own them. Entries live as long as the scene; there is no removal.
type Registry struct {
	mu      sync.RWMutex
	agents  map[ecs.Entity]*StateMachine
	players map[ecs.Entity]PlayerInfo
}

func NewRegistry() *Registry {
	return &Registry{
		agents:  make(map[ecs.Entity]*StateMachine),
		players: make(map[ecs.Entity]PlayerInfo),
	}
}

// RegisterBody records m as the owner of body. Re-registering a body
// replaces its owner.
func (r *Registry) RegisterBody(body ecs.Entity, m *StateMachine) {
	if r == nil || !body.Valid() || m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[body] = m
}

// Agent returns the machine owning body.
func (r *Registry) Agent(body ecs.Entity) (*StateMachine, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.agents[body]
	return m, ok
}

// RegisterPlayer records info for a player collider.
func (r *Registry) RegisterPlayer(collider ecs.Entity, info PlayerInfo) {
	if r == nil || !collider.Valid() {
		return
	}
	if info.Collider == ecs.Null {
		info.Collider = collider
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[collider] = info
}

// Player returns the player owning collider.
func (r *Registry) Player(collider ecs.Entity) (PlayerInfo, bool) {
	if r == nil {
		return PlayerInfo{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[collider]
	return p, ok
}

// Len returns the number of registered bodies and players.
func (r *Registry) Len() (bodies, players int) {
	if r == nil {
		return 0, 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents), len(r.players)
}
