package zombie

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

func TestColliderIsVisibleFieldOfView(t *testing.T) {
	r := newRig(t, testProfile())
	ahead := ai.Stimulus{ID: r.player(common.V(0, 0, 5)), Category: ai.CategoryPlayer, Position: common.V(0, 0, 5)}
	hit, ok := r.m.ColliderIsVisible(ahead, playerMask)
	require.True(t, ok)
	require.Equal(t, ahead.ID, hit.Object)

	rad := common.Deg2Rad(100)
	offPos := common.V(5*math.Sin(rad), 0, 5*math.Cos(rad))
	off := ai.Stimulus{ID: r.player(offPos), Category: ai.CategoryPlayer, Position: offPos}
	casts := r.rays.casts
	_, ok = r.m.ColliderIsVisible(off, playerMask)
	require.False(t, ok)
	require.Equal(t, casts, r.rays.casts, "out of view candidates are rejected before casting")
}

func TestColliderIsVisibleOcclusion(t *testing.T) {
	r := newRig(t, testProfile())
	pos := common.V(0, 0, 6)
	cand := ai.Stimulus{ID: r.player(pos), Category: ai.CategoryPlayer, Position: pos}

	wall := r.store.Create()
	r.rays.add(circle{id: wall, center: common.V(0, 0, 3), radius: 0.5, layer: ai.LayerDefault})
	hit, ok := r.m.ColliderIsVisible(cand, playerMask)
	require.False(t, ok)
	require.Equal(t, wall, hit.Object)

	r.rays.remove(wall)
	_, ok = r.m.ColliderIsVisible(cand, playerMask)
	require.True(t, ok)
}

func TestColliderIsVisibleBodyParts(t *testing.T) {
	cases := []struct {
		name    string
		own     bool
		visible bool
	}{
		{"own_body_part_skipped", true, true},
		{"unknown_body_part_blocks", false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, testProfile())
			pos := common.V(0, 0, 5)
			cand := ai.Stimulus{ID: r.player(pos), Category: ai.CategoryPlayer, Position: pos}
			body := r.m.Body()
			if !c.own {
				body = r.store.Create()
			}
			r.rays.add(circle{id: r.store.Create(), body: body, center: common.V(0, 0, 0.5), radius: 0.2, layer: ai.LayerBodyPart})
			_, ok := r.m.ColliderIsVisible(cand, playerMask)
			require.Equal(t, c.visible, ok)
		})
	}
}

func TestColliderIsVisibleRangeScalesWithSight(t *testing.T) {
	p := testProfile()
	p.Sight = 0.5
	r := newRig(t, p)
	pos := common.V(0, 0, 6)
	cand := ai.Stimulus{ID: r.player(pos), Category: ai.CategoryPlayer, Position: pos}
	_, ok := r.m.ColliderIsVisible(cand, playerMask)
	require.False(t, ok)
}
