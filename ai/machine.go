package ai

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

// TransitionFunc observes a recorded change of state kind.
type TransitionFunc func(from, to StateKind)

// Config configures a StateMachine.
type Config struct {
	Name             string
	Transform        *common.Transform
	Clock            Clock
	Logger           *zap.Logger
	StoppingDistance float64
	Network          *Network
	Rand             *rand.Rand
}

// StateMachine owns the active state, the threats sensed this tick, the
// committed target and the root motion request counters of one agent.
type StateMachine struct {
	// VisualThreat and AudioThreat are rebuilt from scratch every fixed tick.
	VisualThreat Target
	AudioThreat  Target

	// StoppingDistance is the radius of the target trigger.
	StoppingDistance float64

	name      string
	transform *common.Transform
	clock     Clock
	log       *zap.Logger
	rng       *rand.Rand

	states      map[StateKind]State
	order       []StateKind
	current     State
	currentKind StateKind

	target        Target
	targetReached bool
	targetInside  bool

	rootPositionRefCount int
	rootRotationRefCount int

	network *Network
	cursor  Cursor

	listeners []TransitionFunc
}

// NewStateMachine creates an inert machine. Register states and call Start.
func NewStateMachine(cfg Config) *StateMachine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tr := cfg.Transform
	if tr == nil {
		t := common.NewTransform(common.Vec3{}, common.Forward)
		tr = &t
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewManualClock()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &StateMachine{
		VisualThreat:     NewTarget(),
		AudioThreat:      NewTarget(),
		StoppingDistance: cfg.StoppingDistance,
		name:             cfg.Name,
		transform:        tr,
		clock:            clock,
		log:              log.With(zap.String("agent", cfg.Name)),
		rng:              rng,
		states:           make(map[StateKind]State),
		target:           NewTarget(),
		network:          cfg.Network,
		cursor:           NewCursor(),
	}
}

// Name returns the agent name used in logs.
func (m *StateMachine) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Transform returns the agent pose.
func (m *StateMachine) Transform() *common.Transform {
	if m == nil {
		return nil
	}
	return m.transform
}

// Clock returns the simulation clock.
func (m *StateMachine) Clock() Clock {
	if m == nil {
		return nil
	}
	return m.clock
}

// Rand returns the agent's random source.
func (m *StateMachine) Rand() *rand.Rand {
	if m == nil {
		return nil
	}
	return m.rng
}

// Logger returns the agent logger.
func (m *StateMachine) Logger() *zap.Logger {
	if m == nil {
		return zap.NewNop()
	}
	return m.log
}

// Register binds a state to its kind. The first state registered for a kind
// wins; later duplicates are ignored.
func (m *StateMachine) Register(s State) bool {
	if m == nil || s == nil {
		return false
	}
	kind := s.Kind()
	if _, ok := m.states[kind]; ok {
		m.log.Debug("duplicate state ignored", zap.Stringer("kind", kind))
		return false
	}
	m.states[kind] = s
	m.order = append(m.order, kind)
	return true
}

// State returns the registered state for kind.
func (m *StateMachine) State(kind StateKind) (State, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.states[kind]
	return s, ok
}

// Kinds returns the registered kinds in registration order.
func (m *StateMachine) Kinds() []StateKind {
	if m == nil {
		return nil
	}
	return append([]StateKind(nil), m.order...)
}

// Start records kind as the current kind and enters its state. When no state
// is registered for kind the machine stays inert until SetKind assigns a
// valid one.
func (m *StateMachine) Start(kind StateKind) {
	if m == nil {
		return
	}
	m.currentKind = kind
	s, ok := m.states[kind]
	if !ok {
		m.current = nil
		m.log.Warn("no state registered for initial kind, machine inert", zap.Stringer("kind", kind))
		return
	}
	m.current = s
	s.OnEnter()
}

// SetKind revives an inert machine, or is equivalent to ForceState on a
// running one.
func (m *StateMachine) SetKind(kind StateKind) bool {
	if m == nil {
		return false
	}
	if m.current == nil {
		if _, ok := m.states[kind]; !ok {
			m.currentKind = kind
			return false
		}
		m.Start(kind)
		return true
	}
	return m.ForceState(kind)
}

// Current returns the active state, or nil when inert.
func (m *StateMachine) Current() State {
	if m == nil {
		return nil
	}
	return m.current
}

// CurrentKind returns the recorded kind, which may name an unregistered
// state when the Idle fallback is running.
func (m *StateMachine) CurrentKind() StateKind {
	if m == nil {
		return KindNone
	}
	return m.currentKind
}

// OnTransition registers a listener for recorded kind changes.
func (m *StateMachine) OnTransition(fn TransitionFunc) {
	if m == nil || fn == nil {
		return
	}
	m.listeners = append(m.listeners, fn)
}

// FixedUpdate runs before perception each physics tick: threats are cleared
// so stimuli must be re-sensed, the target distance is refreshed and the
// target trigger is evaluated.
func (m *StateMachine) FixedUpdate() {
	if m == nil {
		return
	}
	m.VisualThreat.Clear()
	m.AudioThreat.Clear()
	m.targetReached = false

	if m.target.Kind == TargetNone {
		m.targetInside = false
		return
	}
	pos := m.transform.Position
	m.target.Distance = common.Distance(pos, m.target.Position)

	inside := common.Distance(pos.Flat(), m.target.Position.Flat()) <= m.StoppingDistance
	wasInside := m.targetInside
	m.targetInside = inside
	switch {
	case inside && !wasInside:
		m.targetReached = true
		if m.current != nil {
			m.current.OnDestinationReached(true)
		}
	case inside:
		m.targetReached = true
	case wasInside:
		if m.current != nil {
			m.current.OnDestinationReached(false)
		}
	}
}

// Update runs the active state and performs a transition when it asks for a
// different kind. An unregistered kind falls back to Idle, or halts the
// machine when Idle is missing too; the requested kind is recorded either way.
func (m *StateMachine) Update() {
	if m == nil || m.current == nil {
		return
	}
	next := m.current.OnUpdate()
	if next == m.currentKind {
		return
	}
	prev := m.currentKind
	if s, ok := m.states[next]; ok {
		m.swap(s)
	} else if idle, ok := m.states[KindIdle]; ok {
		m.log.Warn("state not registered, falling back to idle", zap.Stringer("kind", next))
		m.swap(idle)
	} else {
		m.log.Warn("state not registered and no idle fallback", zap.Stringer("kind", next))
		m.current.OnExit()
		m.current = nil
	}
	m.currentKind = next
	m.notify(prev, next)
}

// ForceState switches immediately to kind, outside the OnUpdate protocol.
func (m *StateMachine) ForceState(kind StateKind) bool {
	if m == nil {
		return false
	}
	s, ok := m.states[kind]
	if !ok {
		return false
	}
	prev := m.currentKind
	if m.current == nil {
		m.current = s
		s.OnEnter()
	} else {
		m.swap(s)
	}
	m.currentKind = kind
	if prev != kind {
		m.notify(prev, kind)
	}
	return true
}

func (m *StateMachine) swap(next State) {
	m.current.OnExit()
	next.OnEnter()
	m.current = next
}

func (m *StateMachine) notify(from, to StateKind) {
	m.log.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range m.listeners {
		fn(from, to)
	}
}

// Trigger forwards a sensor event to the active state.
func (m *StateMachine) Trigger(evt TriggerEvent, s Stimulus) {
	if m == nil || m.current == nil {
		return
	}
	m.current.OnTrigger(evt, s)
}

// AnimatorUpdated forwards the post-animation callback to the active state.
func (m *StateMachine) AnimatorUpdated() {
	if m == nil || m.current == nil {
		return
	}
	m.current.OnAnimatorUpdated()
}

// Target returns the committed target.
func (m *StateMachine) Target() Target {
	if m == nil {
		return NewTarget()
	}
	return m.target
}

// TargetReached reports whether the agent is inside the target trigger this
// tick.
func (m *StateMachine) TargetReached() bool {
	if m == nil {
		return false
	}
	return m.targetReached
}

// SetTarget commits to a new target.
func (m *StateMachine) SetTarget(kind TargetKind, source ecs.Entity, pos common.Vec3, distance float64) {
	if m == nil {
		return
	}
	var t Target
	t.Set(kind, source, pos, distance, m.clock.Now())
	m.SetTargetFrom(t)
}

// SetTargetFrom commits to a copy of t. Retargeting to a different object
// restarts the trigger so arriving at it fires a fresh reached event.
func (m *StateMachine) SetTargetFrom(t Target) {
	if m == nil {
		return
	}
	moved := t.Source == ecs.Null && !t.Position.ApproxEqual(m.target.Position)
	if t.Kind != m.target.Kind || t.Source != m.target.Source || moved {
		m.targetInside = false
	}
	m.target = t
	if t.Kind == TargetNone {
		m.target.Clear()
	}
}

// ClearTarget drops the committed target.
func (m *StateMachine) ClearTarget() {
	if m == nil {
		return
	}
	m.target.Clear()
	m.targetInside = false
	m.targetReached = false
}

// AddRootMotionRequest adds to the root position and rotation request
// counters. Each enter request must be paired with a matching exit request.
func (m *StateMachine) AddRootMotionRequest(position, rotation int) {
	if m == nil {
		return
	}
	m.rootPositionRefCount += position
	m.rootRotationRefCount += rotation
	if m.rootPositionRefCount < 0 || m.rootRotationRefCount < 0 {
		m.log.Warn("unpaired root motion release",
			zap.Int("position", m.rootPositionRefCount),
			zap.Int("rotation", m.rootRotationRefCount))
		m.rootPositionRefCount = max(m.rootPositionRefCount, 0)
		m.rootRotationRefCount = max(m.rootRotationRefCount, 0)
	}
}

// UseRootPosition reports whether animation drives the agent's position.
func (m *StateMachine) UseRootPosition() bool {
	return m != nil && m.rootPositionRefCount > 0
}

// UseRootRotation reports whether animation drives the agent's rotation.
func (m *StateMachine) UseRootRotation() bool {
	return m != nil && m.rootRotationRefCount > 0
}

// RootMotionCounts returns the raw request counters.
func (m *StateMachine) RootMotionCounts() (position, rotation int) {
	if m == nil {
		return 0, 0
	}
	return m.rootPositionRefCount, m.rootRotationRefCount
}

// Network returns the assigned waypoint network, if any.
func (m *StateMachine) Network() *Network {
	if m == nil {
		return nil
	}
	return m.network
}

// SetNetwork assigns a waypoint network and resets traversal.
func (m *StateMachine) SetNetwork(n *Network) {
	if m == nil {
		return
	}
	m.network = n
	m.cursor.Reset()
}

// WaypointIndex returns the current traversal index, -1 when unset.
func (m *StateMachine) WaypointIndex() int {
	if m == nil {
		return -1
	}
	if m.network != nil && m.network.Shared {
		return m.network.Cursor().Index()
	}
	return m.cursor.Index()
}

// WaypointPosition resolves the current waypoint, advancing first when
// increment is set, and targets it. Missing configuration degrades to the
// zero vector.
func (m *StateMachine) WaypointPosition(increment bool) common.Vec3 {
	if m == nil {
		return common.Vec3{}
	}
	if m.network == nil {
		m.log.Warn("waypoint requested", zap.Error(ErrNoNetwork))
		return common.Vec3{}
	}
	cursor := &m.cursor
	if m.network.Shared {
		cursor = m.network.Cursor()
	}
	pos, err := m.network.Advance(cursor, increment, m.rng)
	if err != nil {
		m.log.Warn("waypoint requested", zap.String("network", m.network.Name), zap.Error(err))
		return common.Vec3{}
	}
	m.SetTarget(TargetWaypoint, ecs.Null, pos, common.Distance(pos, m.transform.Position))
	return pos
}
