package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

func TestSpaceAddValidates(t *testing.T) {
	store := ecs.NewStore()
	s := NewSpace()
	id := store.Create()

	require.ErrorIs(t, s.Add(Collider{ID: id}), ErrBadShape)
	require.Error(t, s.Add(Collider{Radius: 1}))
	require.NoError(t, s.Add(Collider{ID: id, Radius: 1}))
	require.ErrorIs(t, s.Add(Collider{ID: id, Radius: 1}), ErrDuplicateCollider)
	require.Equal(t, 1, s.Len())

	require.ErrorIs(t, s.Remove(store.Create()), ErrUnknownCollider)
	require.NoError(t, s.Remove(id))
	require.Zero(t, s.Len())
}

func TestCastRayHitsInRange(t *testing.T) {
	store := ecs.NewStore()
	s := NewSpace()
	wall := store.Create()
	player := store.Create()
	body := store.Create()

	require.NoError(t, s.Add(Collider{
		ID:          wall,
		Layer:       ai.LayerDefault,
		Position:    common.V(0, 0, 5),
		HalfExtents: common.V(2, 1, 0.5),
		Static:      true,
	}))
	require.NoError(t, s.Add(Collider{
		ID:       player,
		Body:     body,
		Layer:    ai.LayerBodyPart,
		Position: common.V(0, 0, 8),
		Radius:   0.5,
	}))

	hits := s.CastRay(common.V(0, 1.7, 0), common.Forward, 10, ai.LayerDefault|ai.LayerBodyPart)
	require.Len(t, hits, 2)

	byID := map[ecs.Entity]ai.Hit{}
	for _, h := range hits {
		byID[h.Object] = h
	}
	require.InDelta(t, 4.5, byID[wall].Distance, 1e-6)
	require.InDelta(t, 7.5, byID[player].Distance, 1e-6)
	require.Equal(t, body, byID[player].Body)
	require.InDelta(t, 1.7, byID[player].Point.Y, 1e-9)

	hits = s.CastRay(common.V(0, 0, 0), common.Forward, 10, ai.LayerBodyPart)
	require.Len(t, hits, 1)
	require.Equal(t, player, hits[0].Object)

	require.Empty(t, s.CastRay(common.V(0, 0, 0), common.Forward, 4, ai.LayerAll))
	require.Empty(t, s.CastRay(common.V(0, 0, 0), common.Zero, 10, ai.LayerAll))
}

func TestOverlapsReportsStimuli(t *testing.T) {
	store := ecs.NewStore()
	s := NewSpace()
	food := store.Create()
	sound := store.Create()
	far := store.Create()

	require.NoError(t, s.Add(Collider{
		ID:       sound,
		Layer:    ai.LayerTrigger,
		Category: ai.CategorySound,
		Position: common.V(3, 0, 0),
		Radius:   1,

		SoundRadius: 8,
	}))
	require.NoError(t, s.Add(Collider{
		ID:       food,
		Layer:    ai.LayerTrigger,
		Category: ai.CategoryFood,
		Position: common.V(0, 0.2, 2),
		Radius:   0.3,
	}))
	require.NoError(t, s.Add(Collider{
		ID:       far,
		Layer:    ai.LayerTrigger,
		Category: ai.CategoryFood,
		Position: common.V(40, 0, 0),
		Radius:   0.3,
	}))

	got := s.Overlaps(common.Zero, 5, ai.LayerTrigger)
	require.Len(t, got, 2)
	require.Equal(t, food, got[0].ID)
	require.Equal(t, sound, got[1].ID)
	require.Equal(t, ai.CategoryFood, got[0].Category)
	require.Equal(t, common.V(0, 0.2, 2), got[0].Position)
	require.Equal(t, 8.0, got[1].Radius)

	require.Empty(t, s.Overlaps(common.Zero, 5, ai.LayerPlayer))
}

func TestMoveRotatesOffset(t *testing.T) {
	store := ecs.NewStore()
	s := NewSpace()
	light := store.Create()

	require.NoError(t, s.Add(Collider{
		ID:       light,
		Layer:    ai.LayerAggravator,
		Category: ai.CategoryLight,
		Position: common.Zero,
		Forward:  common.Forward,
		Offset:   common.V(0, 0, 4),
		Radius:   1,

		LightDepth: 8,
	}))
	require.Len(t, s.Overlaps(common.V(0, 0, 4), 0.5, ai.LayerAggravator), 1)
	require.Empty(t, s.Overlaps(common.V(4, 0, 0), 0.5, ai.LayerAggravator))

	require.NoError(t, s.Move(light, common.V(1, 0, 0), common.V(1, 0, 0)))
	require.Empty(t, s.Overlaps(common.V(0, 0, 4), 0.5, ai.LayerAggravator))

	got := s.Overlaps(common.V(5, 0, 0), 0.5, ai.LayerAggravator)
	require.Len(t, got, 1)
	require.Equal(t, common.V(1, 0, 0), got[0].Position)
	require.Equal(t, 8.0, got[0].Depth)

	c, ok := s.Collider(light)
	require.True(t, ok)
	require.Equal(t, common.V(1, 0, 0), c.Forward)
}

func TestMoveRejectsStatic(t *testing.T) {
	store := ecs.NewStore()
	s := NewSpace()
	wall := store.Create()
	require.NoError(t, s.Add(Collider{ID: wall, Radius: 1, Static: true}))
	require.Error(t, s.Move(wall, common.Zero, common.Forward))
	require.ErrorIs(t, s.Move(store.Create(), common.Zero, common.Forward), ErrUnknownCollider)
}
