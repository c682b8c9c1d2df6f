package ai

import (
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

// Clock is the simulation clock. Now is monotonic simulation time in seconds.
type Clock interface {
	Now() float64
	DeltaTime() float64
}

// ManualClock is a Clock advanced explicitly by the simulation loop.
type ManualClock struct {
	now float64
	dt  float64
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Advance moves time forward by dt and records it as the current delta.
// Negative deltas are ignored.
func (c *ManualClock) Advance(dt float64) {
	if c == nil || dt < 0 {
		return
	}
	c.dt = dt
	c.now += dt
}

func (c *ManualClock) Now() float64 {
	if c == nil {
		return 0
	}
	return c.now
}

func (c *ManualClock) DeltaTime() float64 {
	if c == nil {
		return 0
	}
	return c.dt
}

// Hit is one ray intersection. Body is the rigid body owning the hit
// collider, which may be Null for static geometry.
type Hit struct {
	Distance float64
	Point    common.Vec3
	Object   ecs.Entity
	Body     ecs.Entity
	Layer    Layer
}

// RayCaster casts rays against the world. Returned hits are in no particular
// order.
type RayCaster interface {
	CastRay(origin, direction common.Vec3, maxDistance float64, mask Layer) []Hit
}

// Stimulus is an object overlapping a sensor volume. Radius is the world
// radius of sound emitters; Depth is the world depth of a light cone.
type Stimulus struct {
	ID       ecs.Entity
	Category Category
	Position common.Vec3
	Radius   float64
	Depth    float64
}

// TriggerQuery reports the trigger objects overlapping a sphere.
type TriggerQuery interface {
	Overlaps(center common.Vec3, radius float64, mask Layer) []Stimulus
}

// PathStatus is the completeness of a computed path.
type PathStatus int

const (
	PathComplete PathStatus = iota
	PathPartial
	PathInvalid
)

func (s PathStatus) String() string {
	switch s {
	case PathComplete:
		return "complete"
	case PathPartial:
		return "partial"
	default:
		return "invalid"
	}
}

// NavAgent is the path-following service driving an agent's body.
type NavAgent interface {
	SetDestination(pos common.Vec3) bool
	PathPending() bool
	HasPath() bool
	PathStale() bool
	PathStatus() PathStatus
	SteeringTarget() common.Vec3
	DesiredVelocity() common.Vec3
	RemainingDistance() float64
	Resume()
	Stop()
	SetControl(updatePosition, updateRotation bool)
	SetSpeed(speed float64)
}

// ParamID identifies an animation parameter or state by name hash.
type ParamID uint64

// Animator is the animation graph service.
type Animator interface {
	SetFloat(id ParamID, v float64)
	SetBool(id ParamID, v bool)
	SetInt(id ParamID, v int)
	CurrentStateHash(layer int) uint64
}
