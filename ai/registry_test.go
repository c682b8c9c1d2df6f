package ai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ecs"
)

func TestRegistryLookups(t *testing.T) {
	store := ecs.NewStore()
	r := NewRegistry()
	m := NewStateMachine(Config{Name: "walker"})

	torso := store.Create()
	head := store.Create()
	collider := store.Create()
	stranger := store.Create()

	r.RegisterBody(torso, m)
	r.RegisterBody(head, m)
	r.RegisterPlayer(collider, PlayerInfo{ID: uuid.New(), Name: "player1"})

	got, ok := r.Agent(head)
	require.True(t, ok)
	require.Same(t, m, got)

	_, ok = r.Agent(stranger)
	require.False(t, ok)

	p, ok := r.Player(collider)
	require.True(t, ok)
	require.Equal(t, "player1", p.Name)
	require.Equal(t, collider, p.Collider)

	_, ok = r.Player(torso)
	require.False(t, ok)

	bodies, players := r.Len()
	require.Equal(t, 2, bodies)
	require.Equal(t, 1, players)
}

func TestRegistryIgnoresInvalidHandles(t *testing.T) {
	r := NewRegistry()
	r.RegisterBody(ecs.Null, NewStateMachine(Config{}))
	r.RegisterPlayer(ecs.Null, PlayerInfo{Name: "ghost"})
	bodies, players := r.Len()
	require.Zero(t, bodies)
	require.Zero(t, players)

	var nilRegistry *Registry
	_, ok := nilRegistry.Agent(ecs.Entity(1))
	require.False(t, ok)
}
