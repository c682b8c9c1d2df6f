package zombie

import (
	"github.com/milk9111/horde/ai"
)

// attackRoll picks one of the attack animations.
func attackRoll(m *Machine) int {
	return 1 + m.fsm.Rand().IntN(99)
}

type attackState struct {
	zombieState
}

func newAttack(m *Machine) *attackState {
	return &attackState{zombieState: zombieState{m: m}}
}

func (s *attackState) Kind() ai.StateKind { return ai.KindAttack }

func (s *attackState) OnEnter() {
	m := s.m
	m.navControl(true, false)
	m.seeking = 0
	m.feeding = false
	m.attackType = attackRoll(m)
	m.speed = m.profile.Attack.Speed
}

func (s *attackState) OnExit() {
	s.m.attackType = 0
}

func (s *attackState) OnUpdate() ai.StateKind {
	m := s.m
	fsm := m.fsm
	if fsm.VisualThreat.Kind == ai.TargetVisualPlayer {
		fsm.SetTargetFrom(fsm.VisualThreat)
		if !m.inMeleeRange {
			return ai.KindPursuit
		}
		m.faceTarget(m.profile.Attack.SlerpSpeed)
		m.attackType = attackRoll(m)
		return ai.KindAttack
	}
	m.faceTarget(m.profile.Attack.SlerpSpeed)
	return ai.KindAlerted
}

// deadState is terminal. The body is under ragdoll control and perception
// is off.
type deadState struct {
	zombieState
}

func newDead(m *Machine) *deadState {
	return &deadState{zombieState: zombieState{m: m}}
}

func (s *deadState) Kind() ai.StateKind { return ai.KindDead }

func (s *deadState) OnEnter() {
	m := s.m
	m.speed = 0
	m.seeking = 0
	m.feeding = false
	m.attackType = 0
	m.inMeleeRange = false
	m.navControl(false, false)
	m.nav.Stop()
	m.fsm.ClearTarget()
}

func (s *deadState) OnExit() {}

func (s *deadState) OnUpdate() ai.StateKind { return ai.KindDead }

func (s *deadState) OnTrigger(ai.TriggerEvent, ai.Stimulus) {}
