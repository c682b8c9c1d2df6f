package zombie

import (
	"math"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// alertedState turns on the spot investigating a sound or light until the
// timer runs out or something better turns up.
type alertedState struct {
	zombieState
	timer               float64
	directionChangeTime float64
}

func newAlerted(m *Machine) *alertedState {
	return &alertedState{zombieState: zombieState{m: m}}
}

func (s *alertedState) Kind() ai.StateKind { return ai.KindAlerted }

func (s *alertedState) OnEnter() {
	m := s.m
	m.navControl(true, false)
	m.speed = 0
	m.seeking = 0
	m.feeding = false
	m.attackType = 0
	s.timer = m.profile.Alerted.MaxDuration
	s.directionChangeTime = 0
}

func (s *alertedState) OnExit() {}

func (s *alertedState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	tune := m.profile.Alerted
	dt := m.dt()

	s.timer -= dt
	s.directionChangeTime += dt

	if s.timer <= 0 {
		m.nav.SetDestination(fsm.WaypointPosition(false))
		m.nav.Resume()
		s.timer = tune.MaxDuration
	}

	if fsm.VisualThreat.Kind == ai.TargetVisualPlayer {
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindPursuit
	}
	if fsm.AudioThreat.Kind == ai.TargetAudio {
		fsm.SetTargetFrom(fsm.AudioThreat)
		s.timer = tune.MaxDuration
	}
	if fsm.VisualThreat.Kind == ai.TargetVisualLight {
		fsm.SetTargetFrom(fsm.VisualThreat)
		s.timer = tune.MaxDuration
	}
	if fsm.AudioThreat.Kind == ai.TargetNone && fsm.VisualThreat.Kind == ai.TargetVisualFood && fsm.Target().Kind == ai.TargetNone {
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindPursuit
	}

	tr := fsm.Transform()
	target := fsm.Target()
	switch {
	case (target.Kind == ai.TargetAudio || target.Kind == ai.TargetVisualLight) && !fsm.TargetReached():
		angle := common.SignedAngle(tr.Forward, target.Position.Sub(tr.Position))
		if target.Kind == ai.TargetAudio && math.Abs(angle) < tune.ThreatAngleThreshold {
			return ai.KindPursuit
		}
		if s.directionChangeTime > tune.DirectionChangeTime {
			if fsm.Rand().Float64() < m.profile.Intelligence {
				m.seeking = common.Sign(angle)
			} else {
				m.seeking = s.randomSeeking()
			}
			s.directionChangeTime = 0
		}

	case target.Kind == ai.TargetWaypoint && !m.nav.PathPending():
		angle := common.SignedAngle(tr.Forward, m.nav.SteeringTarget().Sub(tr.Position))
		if math.Abs(angle) < tune.WaypointAngleThreshold {
			return ai.KindPatrol
		}
		if s.directionChangeTime > tune.DirectionChangeTime {
			m.seeking = common.Sign(angle)
			s.directionChangeTime = 0
		}

	default:
		if s.directionChangeTime > tune.DirectionChangeTime {
			m.seeking = s.randomSeeking()
			s.directionChangeTime = 0
		}
	}
	return ai.KindAlerted
}

func (s *alertedState) randomSeeking() int {
	return common.Sign(s.m.fsm.Rand().Float64()*2 - 1)
}
