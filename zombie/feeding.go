package zombie

import (
	"math"

	"github.com/milk9111/horde/ai"
)

// feedingState eats until sated. Satisfaction only rises while the eating
// animation is actually playing.
type feedingState struct {
	zombieState
}

func newFeeding(m *Machine) *feedingState {
	return &feedingState{zombieState: zombieState{m: m}}
}

func (s *feedingState) Kind() ai.StateKind { return ai.KindFeeding }

func (s *feedingState) OnEnter() {
	m := s.m
	m.navControl(true, false)
	m.feeding = true
	m.seeking = 0
	m.speed = 0
	m.attackType = 0
}

func (s *feedingState) OnExit() {
	s.m.feeding = false
}

func (s *feedingState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	if m.satisfaction > m.profile.Feeding.Threshold {
		fsm.WaypointPosition(false)
		return ai.KindAlerted
	}
	if fsm.VisualThreat.Kind != ai.TargetNone && fsm.VisualThreat.Kind != ai.TargetVisualFood {
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindAlerted
	}
	if fsm.AudioThreat.Kind == ai.TargetAudio {
		fsm.SetTargetFrom(fsm.AudioThreat)
		return ai.KindAlerted
	}

	if m.animator.CurrentStateHash(m.eatingLayer) == m.eatingHash {
		m.satisfaction = math.Min(1, m.satisfaction+m.dt()*m.profile.ReplenishRate/100)
	}
	m.faceTarget(m.profile.Feeding.SlerpSpeed)
	return ai.KindFeeding
}
