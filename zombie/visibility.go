package zombie

import (
	"slices"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// ColliderIsVisible reports whether s is in the field of view and is the
// first thing a ray from the sensor hits, ignoring this agent's own body
// parts. The field of view is measured on the ground plane. A body part
// that does not resolve to an agent counts as an obstruction.
func (m *Machine) ColliderIsVisible(s ai.Stimulus, mask ai.Layer) (ai.Hit, bool) {
	head := m.SensorPosition()
	dir := s.Position.Sub(head).Flat()
	if dir.IsZero() {
		return ai.Hit{}, false
	}
	if common.Angle(dir, m.fsm.Transform().Forward.Flat()) > m.profile.FOV*0.5 {
		return ai.Hit{}, false
	}

	hits := m.rays.CastRay(head, dir.Normalized(), m.profile.SensorRadius*m.profile.Sight, mask)
	slices.SortStableFunc(hits, func(a, b ai.Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	for _, h := range hits {
		if h.Layer.Has(ai.LayerBodyPart) {
			if owner, ok := m.registry.Agent(h.Body); ok && owner == m.fsm {
				continue
			}
		}
		return h, h.Object == s.ID
	}
	return ai.Hit{}, false
}
