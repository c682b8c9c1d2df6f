package zombie

import (
	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// pursuitState chases the committed target, repathing toward moving
// threats more often the closer they are.
type pursuitState struct {
	zombieState
	timer       float64
	repathTimer float64
}

func newPursuit(m *Machine) *pursuitState {
	return &pursuitState{zombieState: zombieState{m: m}}
}

func (s *pursuitState) Kind() ai.StateKind { return ai.KindPursuit }

func (s *pursuitState) OnEnter() {
	m := s.m
	m.navControl(true, false)
	m.speed = 0
	m.seeking = 0
	m.feeding = false
	m.attackType = 0
	s.timer = 0
	s.repathTimer = 0

	m.nav.SetDestination(m.fsm.Target().Position)
	m.nav.Resume()
}

func (s *pursuitState) OnExit() {}

func (s *pursuitState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	tune := m.profile.Pursuit
	dt := m.dt()

	s.timer += dt
	s.repathTimer += dt

	if s.timer > tune.MaxDuration {
		return ai.KindPatrol
	}

	target := fsm.Target()
	if target.Kind == ai.TargetVisualPlayer && m.inMeleeRange {
		return ai.KindAttack
	}

	if fsm.TargetReached() {
		switch target.Kind {
		case ai.TargetAudio, ai.TargetVisualLight:
			fsm.ClearTarget()
			return ai.KindAlerted
		case ai.TargetVisualFood:
			return ai.KindFeeding
		}
	}

	if m.nav.PathStale() || (!m.nav.HasPath() && !m.nav.PathPending()) || m.nav.PathStatus() != ai.PathComplete {
		return ai.KindAlerted
	}

	if m.nav.PathPending() {
		m.speed = 0
	} else {
		m.speed = tune.Speed
		tr := fsm.Transform()
		switch {
		case !fsm.UseRootRotation() && target.Kind == ai.TargetVisualPlayer &&
			fsm.VisualThreat.Kind == ai.TargetVisualPlayer && fsm.TargetReached():
			tr.LookDirection(target.Position.Sub(tr.Position))
		case !fsm.UseRootRotation() && !fsm.TargetReached():
			m.faceSlerp(m.nav.DesiredVelocity(), tune.SlerpSpeed)
		case fsm.TargetReached():
			return ai.KindAlerted
		}
	}

	visual := fsm.VisualThreat
	audio := fsm.AudioThreat

	if visual.Kind == ai.TargetVisualPlayer {
		s.follow(visual, tune.RepathVisual)
		return ai.KindPursuit
	}

	// keep chasing the last known player position
	if target.Kind == ai.TargetVisualPlayer {
		return ai.KindPursuit
	}

	if visual.Kind == ai.TargetVisualLight {
		switch target.Kind {
		case ai.TargetAudio, ai.TargetVisualFood:
			fsm.SetTargetFrom(visual)
			return ai.KindAlerted
		case ai.TargetVisualLight:
			if target.Source == visual.Source {
				s.follow(visual, tune.RepathVisual)
				return ai.KindPursuit
			}
			fsm.SetTargetFrom(visual)
			return ai.KindAlerted
		}
	} else if audio.Kind == ai.TargetAudio {
		switch target.Kind {
		case ai.TargetVisualFood:
			fsm.SetTargetFrom(audio)
			return ai.KindAlerted
		case ai.TargetAudio:
			if target.Source == audio.Source {
				s.follow(audio, tune.RepathAudio)
				return ai.KindPursuit
			}
			fsm.SetTargetFrom(audio)
			return ai.KindAlerted
		}
	}
	return ai.KindPursuit
}

// follow commits to threat, reissuing the path when the threat has moved
// and the distance scaled repath interval has elapsed.
func (s *pursuitState) follow(threat ai.Target, clamp Range) {
	m := s.m
	fsm := m.fsm
	if !fsm.Target().Position.ApproxEqual(threat.Position) {
		interval := common.Clamp(threat.Distance*m.profile.Pursuit.RepathDistanceMultiplier, clamp.Min, clamp.Max)
		if interval < s.repathTimer {
			m.nav.SetDestination(threat.Position)
			s.repathTimer = 0
		}
	}
	fsm.SetTargetFrom(threat)
}
