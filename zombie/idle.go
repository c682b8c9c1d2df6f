package zombie

import (
	"github.com/milk9111/horde/ai"
)

type idleState struct {
	zombieState
	timer    float64
	idleTime float64
}

func newIdle(m *Machine) *idleState {
	return &idleState{zombieState: zombieState{m: m}}
}

func (s *idleState) Kind() ai.StateKind { return ai.KindIdle }

func (s *idleState) OnEnter() {
	m := s.m
	r := m.profile.Idle.Time
	s.timer = 0
	s.idleTime = r.Min + m.fsm.Rand().Float64()*(r.Max-r.Min)

	m.navControl(true, false)
	m.speed = 0
	m.seeking = 0
	m.feeding = false
	m.attackType = 0
	m.fsm.ClearTarget()
}

func (s *idleState) OnExit() {}

func (s *idleState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	switch {
	case fsm.VisualThreat.Kind == ai.TargetVisualPlayer:
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindPursuit
	case fsm.VisualThreat.Kind == ai.TargetVisualLight:
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindAlerted
	case fsm.AudioThreat.Kind == ai.TargetAudio:
		fsm.SetTargetFrom(fsm.AudioThreat)
		return ai.KindAlerted
	case fsm.VisualThreat.Kind == ai.TargetVisualFood:
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindFeeding
	}

	s.timer += m.dt()
	if s.timer > s.idleTime {
		m.nav.SetDestination(fsm.WaypointPosition(false))
		m.nav.Resume()
		return ai.KindAlerted
	}
	return ai.KindIdle
}
