package ai

import "github.com/milk9111/horde/common"

// LinkTraversal interpolates a jump across a navigation link. It is sampled
// once per tick until done.
type LinkTraversal struct {
	Start    common.Vec3
	End      common.Vec3
	Elapsed  float64
	Duration float64
	Height   float64
}

// NewLinkTraversal starts a jump from start to end.
func NewLinkTraversal(start, end common.Vec3, duration, height float64) *LinkTraversal {
	return &LinkTraversal{Start: start, End: end, Duration: duration, Height: height}
}

// Step advances the jump by dt and returns the sampled position. The arc
// peaks at Height halfway through.
func (l *LinkTraversal) Step(dt float64) (common.Vec3, bool) {
	if l == nil {
		return common.Vec3{}, true
	}
	if l.Duration <= 0 {
		l.Elapsed = 0
		return l.End, true
	}
	l.Elapsed += dt
	t := common.Clamp01(l.Elapsed / l.Duration)
	pos := common.LerpVec(l.Start, l.End, t).Add(common.Up.Scale(4 * l.Height * t * (1 - t)))
	return pos, t >= 1
}

// Done reports whether the traversal has finished.
func (l *LinkTraversal) Done() bool {
	return l == nil || l.Duration <= 0 || l.Elapsed >= l.Duration
}
