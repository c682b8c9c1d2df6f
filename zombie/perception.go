package zombie

import (
	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

const (
	playerMask = ai.LayerDefault | ai.LayerBodyPart | ai.LayerPlayer
	visualMask = ai.LayerDefault | ai.LayerBodyPart | ai.LayerAggravator
)

// hungerLimit is the satisfaction below which food is noticed.
const hungerLimit = 0.9

// zombieState is embedded by every zombie state. It runs perception on
// sensor events and supplies no-op destination and animator handlers.
type zombieState struct {
	m *Machine
}

func (z zombieState) OnTrigger(evt ai.TriggerEvent, s ai.Stimulus) {
	if evt == ai.TriggerExit {
		return
	}
	z.m.Perceive(s)
}

func (zombieState) OnDestinationReached(bool) {}
func (zombieState) OnAnimatorUpdated()        {}

// Perceive folds one sensed stimulus into this tick's threats. Players
// outrank lights, lights outrank food, and food is ignored while an audio
// threat is held.
func (m *Machine) Perceive(s ai.Stimulus) {
	fsm := m.fsm
	head := m.SensorPosition()
	curType := fsm.VisualThreat.Kind
	now := fsm.Clock().Now()

	switch s.Category {
	case ai.CategoryPlayer:
		d := common.Distance(head, s.Position)
		if curType == ai.TargetVisualPlayer && d >= fsm.VisualThreat.Distance {
			return
		}
		if _, ok := m.ColliderIsVisible(s, playerMask); ok {
			fsm.VisualThreat.Set(ai.TargetVisualPlayer, s.ID, s.Position, d, now)
		}

	case ai.CategoryLight:
		if curType == ai.TargetVisualPlayer || s.Depth <= 0 {
			return
		}
		d := common.Distance(head, s.Position)
		if curType == ai.TargetVisualLight && d >= fsm.VisualThreat.Distance {
			return
		}
		aggr := d / s.Depth
		if aggr <= m.profile.Sight && aggr <= m.profile.Intelligence {
			fsm.VisualThreat.Set(ai.TargetVisualLight, s.ID, s.Position, d, now)
		}

	case ai.CategorySound:
		if s.Radius <= 0 {
			return
		}
		d := common.Distance(head, s.Position)
		f := d / s.Radius
		f += f * (1 - m.profile.Hearing)
		if f > 1 {
			return
		}
		if d < fsm.AudioThreat.Distance {
			fsm.AudioThreat.Set(ai.TargetAudio, s.ID, s.Position, d, now)
		}

	case ai.CategoryFood:
		if curType == ai.TargetVisualPlayer || curType == ai.TargetVisualLight {
			return
		}
		if m.satisfaction >= hungerLimit || fsm.AudioThreat.Kind != ai.TargetNone {
			return
		}
		d := common.Distance(head, s.Position)
		if d >= fsm.VisualThreat.Distance {
			return
		}
		if _, ok := m.ColliderIsVisible(s, visualMask); ok {
			fsm.VisualThreat.Set(ai.TargetVisualFood, s.ID, s.Position, d, now)
		}
	}
}
