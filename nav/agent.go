package nav

import (
	"math"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// arriveEpsilon is how close counts as being on a corner.
const arriveEpsilon = 1e-3

// Agent follows grid paths for one body. Path requests complete on the next
// Tick, so PathPending is observable for one frame after SetDestination.
type Agent struct {
	grid *Grid
	tr   *common.Transform

	speed     float64
	stopped   bool
	updatePos bool
	updateRot bool

	dest    common.Vec3
	hasDest bool
	pending bool
	path    Path
	next    int

	link     *ai.LinkTraversal
	linkDef  *Link
	velocity common.Vec3
}

var _ ai.NavAgent = (*Agent)(nil)

// NewAgent drives tr across grid.
func NewAgent(grid *Grid, tr *common.Transform) *Agent {
	return &Agent{
		grid:      grid,
		tr:        tr,
		updatePos: true,
		path:      Path{Status: ai.PathInvalid},
	}
}

// SetDestination requests a path to pos. It fails only when the agent has
// no grid.
func (a *Agent) SetDestination(pos common.Vec3) bool {
	if a == nil || a.grid == nil {
		return false
	}
	a.dest = pos
	a.hasDest = true
	a.pending = true
	return true
}

// Destination returns the last requested destination.
func (a *Agent) Destination() (common.Vec3, bool) {
	return a.dest, a.hasDest
}

func (a *Agent) PathPending() bool { return a.pending }

// HasPath reports whether a computed path still has corners to reach.
func (a *Agent) HasPath() bool {
	return !a.pending && a.next < len(a.path.Corners)
}

// PathStale reports whether the grid changed since the path was computed.
func (a *Agent) PathStale() bool {
	return !a.pending && a.hasDest && a.path.Version != a.grid.Version()
}

func (a *Agent) PathStatus() ai.PathStatus {
	if a.pending {
		return ai.PathComplete
	}
	return a.path.Status
}

// Path returns the current path.
func (a *Agent) Path() Path { return a.path }

// SteeringTarget is the corner the agent is heading for, or its own
// position when it has none.
func (a *Agent) SteeringTarget() common.Vec3 {
	if a.HasPath() {
		return a.path.Corners[a.next].Position
	}
	return a.tr.Position
}

func (a *Agent) DesiredVelocity() common.Vec3 {
	if a.stopped || !a.HasPath() || a.link != nil {
		return common.Vec3{}
	}
	return a.SteeringTarget().Sub(a.tr.Position).Flat().Normalized().Scale(a.speed)
}

// Velocity is the displacement rate of the last move.
func (a *Agent) Velocity() common.Vec3 { return a.velocity }

// RemainingDistance is the path length still to travel, +Inf while a path
// is pending.
func (a *Agent) RemainingDistance() float64 {
	if a.pending {
		return math.Inf(1)
	}
	if !a.HasPath() {
		return 0
	}
	total := common.Distance(a.tr.Position, a.path.Corners[a.next].Position)
	for i := a.next + 1; i < len(a.path.Corners); i++ {
		total += common.Distance(a.path.Corners[i-1].Position, a.path.Corners[i].Position)
	}
	return total
}

func (a *Agent) Resume() { a.stopped = false }
func (a *Agent) Stop()   { a.stopped = true }

func (a *Agent) SetControl(updatePosition, updateRotation bool) {
	a.updatePos = updatePosition
	a.updateRot = updateRotation
}

// Control returns which pose channels the agent writes.
func (a *Agent) Control() (updatePosition, updateRotation bool) {
	return a.updatePos, a.updateRot
}

func (a *Agent) SetSpeed(speed float64) {
	a.speed = math.Max(0, speed)
}

func (a *Agent) Speed() float64 { return a.speed }

// Tick completes a pending path request from the current position.
func (a *Agent) Tick() {
	if a == nil || !a.pending {
		return
	}
	a.pending = false
	a.path = a.grid.ComputePath(a.tr.Position, a.dest)
	a.next = 0
	a.skipReached()
}

// Warp places the agent at pos and drops any link traversal.
func (a *Agent) Warp(pos common.Vec3) {
	a.tr.Position = pos
	a.link = nil
	a.linkDef = nil
	if a.hasDest {
		a.pending = true
	}
}

// Advance moves at the agent speed for dt.
func (a *Agent) Advance(dt float64) {
	a.MoveAlong(a.speed * dt)
}

// MoveAlong moves dist along the path when position updates are enabled.
// Reaching the entry of a link stops the move and starts the traversal.
func (a *Agent) MoveAlong(dist float64) {
	a.velocity = common.Vec3{}
	if a.stopped || a.pending || a.link != nil || !a.updatePos || dist <= 0 {
		return
	}
	start := a.tr.Position
	for dist > 0 && a.HasPath() {
		c := a.path.Corners[a.next]
		if c.Link != nil {
			a.beginLink(c)
			break
		}
		to := c.Position.Sub(a.tr.Position)
		to.Y = 0
		d := to.Len()
		if d <= dist {
			a.tr.Position.X, a.tr.Position.Z = c.Position.X, c.Position.Z
			dist -= d
			a.next++
			continue
		}
		a.tr.Position = a.tr.Position.Add(to.Scale(dist / d))
		dist = 0
	}
	moved := a.tr.Position.Sub(start)
	if a.updateRot && !moved.Flat().IsZero() {
		a.tr.LookDirection(moved)
	}
	a.velocity = moved
}

func (a *Agent) skipReached() {
	for a.next < len(a.path.Corners) {
		c := a.path.Corners[a.next]
		if c.Link != nil || common.Distance(a.tr.Position.Flat(), c.Position.Flat()) > arriveEpsilon {
			return
		}
		a.next++
	}
}

func (a *Agent) beginLink(c Corner) {
	a.link = ai.NewLinkTraversal(a.tr.Position, c.Position, c.Link.Duration, c.Link.Height)
	a.linkDef = c.Link
}

// OnLink reports whether the agent is crossing an off-grid link.
func (a *Agent) OnLink() bool { return a.link != nil }

// LinkTraversal returns the active traversal.
func (a *Agent) LinkTraversal() *ai.LinkTraversal { return a.link }

// CurrentLink returns the link being crossed.
func (a *Agent) CurrentLink() (Link, bool) {
	if a.linkDef == nil {
		return Link{}, false
	}
	return *a.linkDef, true
}

// CompleteLink ends a traversal at the link exit and resumes path
// following.
func (a *Agent) CompleteLink() {
	if a.link == nil {
		return
	}
	a.tr.Position = a.link.End
	a.link = nil
	a.linkDef = nil
	if a.next < len(a.path.Corners) {
		a.next++
	}
	a.skipReached()
}
