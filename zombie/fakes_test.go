package zombie

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

// circle is a collider on the ground plane.
type circle struct {
	id     ecs.Entity
	body   ecs.Entity
	center common.Vec3
	radius float64
	layer  ai.Layer
}

type fakeRays struct {
	colliders []circle
	casts     int
}

func (f *fakeRays) add(c circle) { f.colliders = append(f.colliders, c) }

func (f *fakeRays) remove(id ecs.Entity) {
	out := f.colliders[:0]
	for _, c := range f.colliders {
		if c.id != id {
			out = append(out, c)
		}
	}
	f.colliders = out
}

func (f *fakeRays) CastRay(origin, dir common.Vec3, maxDist float64, mask ai.Layer) []ai.Hit {
	f.casts++
	o := origin.Flat()
	d := dir.Flat().Normalized()
	var hits []ai.Hit
	// returned farthest first so consumers must sort
	for i := len(f.colliders) - 1; i >= 0; i-- {
		c := f.colliders[i]
		if !mask.Has(c.layer) {
			continue
		}
		oc := c.center.Flat().Sub(o)
		t := oc.Dot(d)
		perp2 := oc.Dot(oc) - t*t
		r2 := c.radius * c.radius
		if t < 0 || perp2 > r2 {
			continue
		}
		dist := math.Max(0, t-math.Sqrt(r2-perp2))
		if dist > maxDist {
			continue
		}
		hits = append(hits, ai.Hit{Distance: dist, Object: c.id, Body: c.body, Layer: c.layer})
	}
	return hits
}

type fakeTriggers struct {
	stims []ai.Stimulus
}

func (f *fakeTriggers) Overlaps(center common.Vec3, radius float64, mask ai.Layer) []ai.Stimulus {
	var out []ai.Stimulus
	for _, s := range f.stims {
		if common.Distance(center.Flat(), s.Position.Flat()) <= radius {
			out = append(out, s)
		}
	}
	return out
}

type fakeNav struct {
	dest      common.Vec3
	destCalls int
	pending   bool
	noPath    bool
	stale     bool
	status    ai.PathStatus
	steering  common.Vec3
	velocity  common.Vec3
	stopped   bool
	speed     float64
	updatePos bool
	updateRot bool
}

func (n *fakeNav) SetDestination(p common.Vec3) bool {
	n.dest = p
	n.destCalls++
	n.steering = p
	return true
}
func (n *fakeNav) PathPending() bool            { return n.pending }
func (n *fakeNav) HasPath() bool                { return !n.noPath }
func (n *fakeNav) PathStale() bool              { return n.stale }
func (n *fakeNav) PathStatus() ai.PathStatus    { return n.status }
func (n *fakeNav) SteeringTarget() common.Vec3  { return n.steering }
func (n *fakeNav) DesiredVelocity() common.Vec3 { return n.velocity }
func (n *fakeNav) RemainingDistance() float64   { return 0 }
func (n *fakeNav) Resume()                      { n.stopped = false }
func (n *fakeNav) Stop()                        { n.stopped = true }
func (n *fakeNav) SetControl(pos, rot bool)     { n.updatePos, n.updateRot = pos, rot }
func (n *fakeNav) SetSpeed(v float64)           { n.speed = v }

type fakeAnimator struct {
	params map[ai.ParamID]float64
	hashes map[int]uint64
}

func newFakeAnimator() *fakeAnimator {
	return &fakeAnimator{params: map[ai.ParamID]float64{}, hashes: map[int]uint64{}}
}

func (a *fakeAnimator) SetFloat(id ai.ParamID, v float64) { a.params[id] = v }
func (a *fakeAnimator) SetBool(id ai.ParamID, v bool) {
	a.params[id] = 0
	if v {
		a.params[id] = 1
	}
}
func (a *fakeAnimator) SetInt(id ai.ParamID, v int)       { a.params[id] = float64(v) }
func (a *fakeAnimator) CurrentStateHash(layer int) uint64 { return a.hashes[layer] }

type rig struct {
	m        *Machine
	clock    *ai.ManualClock
	store    *ecs.Store
	registry *ai.Registry
	rays     *fakeRays
	triggers *fakeTriggers
	nav      *fakeNav
	animator *fakeAnimator
	tr       *common.Transform
}

// testProfile makes perception easy to reason about: the sensor sits at
// ground level and sees the whole sensor radius.
func testProfile() Profile {
	p := DefaultProfile()
	p.FOV = 180
	p.Sight = 1
	p.Intelligence = 1
	p.SensorHeight = 0
	return p
}

func newRig(t *testing.T, p Profile, opts ...func(*Deps)) *rig {
	t.Helper()
	r := &rig{
		clock:    ai.NewManualClock(),
		store:    ecs.NewStore(),
		registry: ai.NewRegistry(),
		rays:     &fakeRays{},
		triggers: &fakeTriggers{},
		nav:      &fakeNav{},
		animator: newFakeAnimator(),
	}
	tr := common.NewTransform(common.Vec3{}, common.Forward)
	r.tr = &tr
	d := Deps{
		Name:      "z1",
		Body:      r.store.Create(),
		Transform: r.tr,
		Clock:     r.clock,
		Rand:      rand.New(rand.NewPCG(7, 11)),
		Registry:  r.registry,
		Rays:      r.rays,
		Triggers:  r.triggers,
		Nav:       r.nav,
		Animator:  r.animator,
	}
	for _, o := range opts {
		o(&d)
	}
	m, err := New(p, d)
	require.NoError(t, err)
	r.m = m
	return r
}

// newRigDeps returns a complete set of fake services for constructor tests.
func newRigDeps(t *testing.T) Deps {
	t.Helper()
	store := ecs.NewStore()
	return Deps{
		Name:     "z1",
		Body:     store.Create(),
		Clock:    ai.NewManualClock(),
		Registry: ai.NewRegistry(),
		Rays:     &fakeRays{},
		Triggers: &fakeTriggers{},
		Nav:      &fakeNav{},
		Animator: newFakeAnimator(),
	}
}

// player places a visible player collider and its sensor stimulus.
func (r *rig) player(pos common.Vec3) ecs.Entity {
	id := r.store.Create()
	r.rays.add(circle{id: id, center: pos, radius: 0.3, layer: ai.LayerPlayer})
	r.triggers.stims = append(r.triggers.stims, ai.Stimulus{ID: id, Category: ai.CategoryPlayer, Position: pos})
	return id
}

func (r *rig) food(pos common.Vec3) ecs.Entity {
	id := r.store.Create()
	r.rays.add(circle{id: id, center: pos, radius: 0.3, layer: ai.LayerAggravator})
	r.triggers.stims = append(r.triggers.stims, ai.Stimulus{ID: id, Category: ai.CategoryFood, Position: pos})
	return id
}

func (r *rig) sound(pos common.Vec3, radius float64) ecs.Entity {
	id := r.store.Create()
	r.triggers.stims = append(r.triggers.stims, ai.Stimulus{ID: id, Category: ai.CategorySound, Position: pos, Radius: radius})
	return id
}

func (r *rig) light(pos common.Vec3, depth float64) ecs.Entity {
	id := r.store.Create()
	r.triggers.stims = append(r.triggers.stims, ai.Stimulus{ID: id, Category: ai.CategoryLight, Position: pos, Depth: depth})
	return id
}

func (r *rig) clearStimuli() {
	r.triggers.stims = nil
	r.rays.colliders = nil
}

// tick runs one fixed step followed by one frame step.
func (r *rig) tick(dt float64) {
	r.clock.Advance(dt)
	r.m.FixedUpdate()
	r.m.Update()
}
