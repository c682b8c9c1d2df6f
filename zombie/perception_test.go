package zombie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

func TestPerceptionPlayerOutranksEverything(t *testing.T) {
	r := newRig(t, testProfile())
	r.m.SetSatisfaction(0.5)
	far := r.player(common.V(-4, 0, 4))
	near := r.player(common.V(0, 0, 4))
	r.light(common.V(0, 0, 2), 5)
	snd := r.sound(common.V(1, 0, 1), 5)
	r.food(common.V(1, 0, 2))

	r.m.FixedUpdate()
	fsm := r.m.FSM()
	require.Equal(t, ai.TargetVisualPlayer, fsm.VisualThreat.Kind)
	require.Equal(t, near, fsm.VisualThreat.Source)
	require.NotEqual(t, far, fsm.VisualThreat.Source)
	require.InDelta(t, 4.0, fsm.VisualThreat.Distance, 1e-9)
	require.Equal(t, ai.TargetAudio, fsm.AudioThreat.Kind)
	require.Equal(t, snd, fsm.AudioThreat.Source)
}

func TestPerceptionLightBeatsFood(t *testing.T) {
	r := newRig(t, testProfile())
	r.m.SetSatisfaction(0.5)
	lamp := r.light(common.V(0, 0, 2), 5)
	r.food(common.V(0, 0, 1))

	r.m.FixedUpdate()
	require.Equal(t, ai.TargetVisualLight, r.m.FSM().VisualThreat.Kind)
	require.Equal(t, lamp, r.m.FSM().VisualThreat.Source)
}

func TestPerceptionLightAggravation(t *testing.T) {
	cases := []struct {
		name         string
		sight        float64
		intelligence float64
		depth        float64
		want         ai.TargetKind
	}{
		{"within_both", 1, 1, 5, ai.TargetVisualLight},
		{"too_dim_for_sight", 0.3, 1, 5, ai.TargetNone},
		{"too_dull", 1, 0.3, 5, ai.TargetNone},
		{"no_depth", 1, 1, 0, ai.TargetNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := testProfile()
			p.Sight = c.sight
			p.Intelligence = c.intelligence
			r := newRig(t, p)
			r.light(common.V(0, 0, 2), c.depth)
			r.m.FixedUpdate()
			require.Equal(t, c.want, r.m.FSM().VisualThreat.Kind)
		})
	}
}

func TestPerceptionHearing(t *testing.T) {
	cases := []struct {
		name    string
		hearing float64
		want    ai.TargetKind
	}{
		{"perfect_hearing", 1, ai.TargetAudio},
		{"poor_hearing_shrinks_radius", 0.5, ai.TargetNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := testProfile()
			p.Hearing = c.hearing
			r := newRig(t, p)
			r.sound(common.V(0, 0, 4), 5)
			r.m.FixedUpdate()
			require.Equal(t, c.want, r.m.FSM().AudioThreat.Kind)
		})
	}
}

func TestPerceptionClosestSound(t *testing.T) {
	r := newRig(t, testProfile())
	r.sound(common.V(0, 0, 4), 8)
	near := r.sound(common.V(2, 0, 0), 8)
	r.m.FixedUpdate()
	require.Equal(t, near, r.m.FSM().AudioThreat.Source)
	require.InDelta(t, 2.0, r.m.FSM().AudioThreat.Distance, 1e-9)
}

func TestPerceptionFood(t *testing.T) {
	cases := []struct {
		name         string
		satisfaction float64
		withSound    bool
		want         ai.TargetKind
	}{
		{"hungry", 0.5, false, ai.TargetVisualFood},
		{"sated", 0.95, false, ai.TargetNone},
		{"at_limit", 0.9, false, ai.TargetNone},
		{"sound_suppresses_food", 0.5, true, ai.TargetNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, testProfile())
			r.m.SetSatisfaction(c.satisfaction)
			r.food(common.V(0, 0, 3))
			if c.withSound {
				r.sound(common.V(3, 0, 0), 5)
			}
			r.m.FixedUpdate()
			require.Equal(t, c.want, r.m.FSM().VisualThreat.Kind)
		})
	}
}

func TestThreatsAreResensedEveryTick(t *testing.T) {
	r := newRig(t, testProfile())
	r.player(common.V(0, 0, 4))
	r.m.FixedUpdate()
	require.Equal(t, ai.TargetVisualPlayer, r.m.FSM().VisualThreat.Kind)

	r.clearStimuli()
	r.m.FixedUpdate()
	require.True(t, r.m.FSM().VisualThreat.IsNone())
}

func TestMeleeRange(t *testing.T) {
	r := newRig(t, testProfile())
	r.player(common.V(0, 0, 1))
	r.m.FixedUpdate()
	require.True(t, r.m.InMeleeRange())

	r.clearStimuli()
	r.player(common.V(0, 0, 3))
	r.m.FixedUpdate()
	require.False(t, r.m.InMeleeRange())
}

func TestPerceptionIgnoresTargetVolumes(t *testing.T) {
	r := newRig(t, testProfile())
	id := r.store.Create()
	r.triggers.stims = append(r.triggers.stims, ai.Stimulus{ID: id, Category: ai.CategoryTarget, Position: common.V(0, 0, 1), Radius: 2})

	r.m.FixedUpdate()
	require.Equal(t, ai.TargetNone, r.m.FSM().VisualThreat.Kind)
	require.Equal(t, ai.TargetNone, r.m.FSM().AudioThreat.Kind)
	require.Equal(t, "target", ai.CategoryTarget.String())
}

func TestPerceptionClosestOfSameCategory(t *testing.T) {
	near := common.V(0.5, 0, 1)
	far := common.V(-0.5, 0, 3)
	cases := []struct {
		name      string
		nearFirst bool
		place     func(r *rig, pos common.Vec3) ecs.Entity
		want      ai.TargetKind
	}{
		{"light_near_first", true, func(r *rig, pos common.Vec3) ecs.Entity { return r.light(pos, 5) }, ai.TargetVisualLight},
		{"light_far_first", false, func(r *rig, pos common.Vec3) ecs.Entity { return r.light(pos, 5) }, ai.TargetVisualLight},
		{"food_near_first", true, func(r *rig, pos common.Vec3) ecs.Entity { return r.food(pos) }, ai.TargetVisualFood},
		{"food_far_first", false, func(r *rig, pos common.Vec3) ecs.Entity { return r.food(pos) }, ai.TargetVisualFood},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, testProfile())
			r.m.SetSatisfaction(0.5)
			var want ecs.Entity
			if c.nearFirst {
				want = c.place(r, near)
				c.place(r, far)
			} else {
				c.place(r, far)
				want = c.place(r, near)
			}

			r.m.FixedUpdate()
			fsm := r.m.FSM()
			require.Equal(t, c.want, fsm.VisualThreat.Kind)
			require.Equal(t, want, fsm.VisualThreat.Source)
			require.InDelta(t, near.Len(), fsm.VisualThreat.Distance, 1e-9)
		})
	}
}
