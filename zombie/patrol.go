package zombie

import (
	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

type patrolState struct {
	zombieState
}

func newPatrol(m *Machine) *patrolState {
	return &patrolState{zombieState: zombieState{m: m}}
}

func (s *patrolState) Kind() ai.StateKind { return ai.KindPatrol }

func (s *patrolState) OnEnter() {
	m := s.m
	m.navControl(true, false)
	m.seeking = 0
	m.feeding = false
	m.attackType = 0
	m.nav.SetDestination(m.fsm.WaypointPosition(false))
	m.nav.Resume()
}

func (s *patrolState) OnExit() {}

func (s *patrolState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	switch fsm.VisualThreat.Kind {
	case ai.TargetVisualPlayer:
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindPursuit
	case ai.TargetVisualLight:
		fsm.SetTargetFrom(fsm.VisualThreat)
		return ai.KindAlerted
	}
	if fsm.AudioThreat.Kind == ai.TargetAudio {
		fsm.SetTargetFrom(fsm.AudioThreat)
		return ai.KindAlerted
	}
	if fsm.VisualThreat.Kind == ai.TargetVisualFood {
		// hungrier agents go for food that is further away
		if 1-m.satisfaction > fsm.VisualThreat.Distance/m.profile.SensorRadius {
			fsm.SetTargetFrom(fsm.VisualThreat)
			return ai.KindPursuit
		}
	}

	if m.nav.PathPending() {
		m.speed = 0
		return ai.KindPatrol
	}
	m.speed = m.profile.Patrol.Speed

	tr := fsm.Transform()
	steer := m.nav.SteeringTarget().Sub(tr.Position).Flat()
	if !steer.IsZero() && common.Angle(tr.Forward, steer) > m.profile.Patrol.TurnOnSpotThreshold {
		return ai.KindAlerted
	}

	m.faceSlerp(m.nav.DesiredVelocity(), m.profile.Patrol.SlerpSpeed)

	if m.nav.PathStale() || !m.nav.HasPath() || m.nav.PathStatus() != ai.PathComplete {
		m.nav.SetDestination(fsm.WaypointPosition(true))
	}
	return ai.KindPatrol
}

// OnDestinationReached moves on to the next waypoint when the current one
// is reached.
func (s *patrolState) OnDestinationReached(reached bool) {
	if !reached || s.m.fsm.Target().Kind != ai.TargetWaypoint {
		return
	}
	s.m.nav.SetDestination(s.m.fsm.WaypointPosition(true))
}
