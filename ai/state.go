package ai

// State is one behavioural mode. OnUpdate returns the kind the machine
// should be in after this tick; returning Kind() keeps the state active.
type State interface {
	Kind() StateKind
	OnEnter()
	OnExit()
	OnUpdate() StateKind
	OnTrigger(evt TriggerEvent, s Stimulus)
	OnDestinationReached(reached bool)
	OnAnimatorUpdated()
}

// BaseState provides no-op event handlers for states that only care about
// the enter/update/exit lifecycle.
type BaseState struct{}

func (BaseState) OnTrigger(TriggerEvent, Stimulus) {}
func (BaseState) OnDestinationReached(bool)        {}
func (BaseState) OnAnimatorUpdated()               {}
