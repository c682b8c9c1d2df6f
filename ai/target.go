package ai

import (
	"math"

	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

// Target describes what an agent is currently reacting to: a threat it
// sensed this tick, or the point it has committed to.
type Target struct {
	Kind     TargetKind
	Source   ecs.Entity
	Position common.Vec3
	Distance float64
	Time     float64
}

// NewTarget returns a cleared target.
func NewTarget() Target {
	var t Target
	t.Clear()
	return t
}

// Set overwrites the target and stamps it with now.
func (t *Target) Set(kind TargetKind, source ecs.Entity, pos common.Vec3, distance, now float64) {
	if t == nil {
		return
	}
	if kind == TargetNone {
		t.Clear()
		return
	}
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}
	t.Kind = kind
	t.Source = source
	t.Position = pos
	t.Distance = distance
	t.Time = now
}

// Clear resets the target so any real detection compares closer.
func (t *Target) Clear() {
	if t == nil {
		return
	}
	t.Kind = TargetNone
	t.Source = ecs.Null
	t.Position = common.Vec3{}
	t.Distance = math.Inf(1)
	t.Time = 0
}

// IsNone reports whether nothing is targeted.
func (t Target) IsNone() bool {
	return t.Kind == TargetNone
}

// Same reports whether o refers to the same source object as t.
func (t Target) Same(o Target) bool {
	return t.Kind != TargetNone && t.Kind == o.Kind && t.Source == o.Source
}
