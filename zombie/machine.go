package zombie

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/anim"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

// ControlMode selects what drives the body's bones.
type ControlMode int

const (
	ControlAnimated ControlMode = iota
	ControlRagdoll
)

func (c ControlMode) String() string {
	if c == ControlRagdoll {
		return "ragdoll"
	}
	return "animated"
}

// BodyRegion is the part of the body a hit lands on.
type BodyRegion int

const (
	RegionUpper BodyRegion = iota
	RegionLower
)

// Sensors are the layers reported by the sensor volume.
const sensorMask = ai.LayerPlayer | ai.LayerAggravator | ai.LayerTrigger

// Deps are the services and world context a Machine is built against.
type Deps struct {
	Name      string
	ID        uuid.UUID
	Body      ecs.Entity
	Transform *common.Transform
	Clock     ai.Clock
	Logger    *zap.Logger
	Rand      *rand.Rand
	Network   *ai.Network
	Registry  *ai.Registry
	Rays      ai.RayCaster
	Triggers  ai.TriggerQuery
	Nav       ai.NavAgent
	Animator  ai.Animator

	// LoadScript resolves Profile.AttackScript. Required only when the
	// profile names a script.
	LoadScript func(name string) ([]byte, error)
}

// layerIndexer is implemented by animators that can name their layers.
type layerIndexer interface {
	LayerIndex(name string) int
}

// Machine is the zombie agent: a state machine plus the traits and scalars
// its states read and write.
type Machine struct {
	fsm      *ai.StateMachine
	profile  Profile
	id       uuid.UUID
	body     ecs.Entity
	registry *ai.Registry
	rays     ai.RayCaster
	triggers ai.TriggerQuery
	nav      ai.NavAgent
	animator ai.Animator
	log      *zap.Logger

	speed        float64
	seeking      int
	feeding      bool
	attackType   int
	inMeleeRange bool
	satisfaction float64
	health       int
	upperDamage  int
	lowerDamage  int
	control      ControlMode

	sensed map[ecs.Entity]ai.Stimulus

	eatingLayer int
	eatingHash  uint64

	pSpeed   ai.ParamID
	pFeeding ai.ParamID
	pSeeking ai.ParamID
	pAttack  ai.ParamID
}

// New validates p, builds the machine, registers every state and starts in
// Idle. The agent body is registered with the Registry so visibility tests
// can ignore self hits.
func New(p Profile, d Deps) (*Machine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if d.Rays == nil || d.Triggers == nil || d.Nav == nil || d.Animator == nil {
		return nil, fmt.Errorf("%w: rays, triggers, nav and animator are required", ErrMissingService)
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("zombie")
	id := d.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	name := d.Name
	if name == "" {
		name = p.Name
	}

	m := &Machine{
		profile:      p,
		id:           id,
		body:         d.Body,
		registry:     d.Registry,
		rays:         d.Rays,
		triggers:     d.Triggers,
		nav:          d.Nav,
		animator:     d.Animator,
		log:          log.With(zap.String("agent", name), zap.Stringer("id", id)),
		satisfaction: p.Satisfaction,
		health:       p.Health,
		sensed:       make(map[ecs.Entity]ai.Stimulus),
		pSpeed:       anim.Param(anim.ParamSpeed),
		pFeeding:     anim.Param(anim.ParamFeeding),
		pSeeking:     anim.Param(anim.ParamSeeking),
		pAttack:      anim.Param(anim.ParamAttack),
	}
	m.fsm = ai.NewStateMachine(ai.Config{
		Name:             name,
		Transform:        d.Transform,
		Clock:            d.Clock,
		Logger:           log,
		StoppingDistance: p.StoppingDistance,
		Network:          d.Network,
		Rand:             d.Rand,
	})
	m.bindEating()
	m.registry.RegisterBody(d.Body, m.fsm)

	if p.AttackScript != "" {
		if d.LoadScript == nil {
			return nil, fmt.Errorf("%w: script loader for %s", ErrMissingService, p.AttackScript)
		}
		src, err := d.LoadScript(p.AttackScript)
		if err != nil {
			return nil, fmt.Errorf("zombie: load attack script %s: %w", p.AttackScript, err)
		}
		s, err := NewScriptedState(m, ai.KindAttack, p.AttackScript, src)
		if err != nil {
			return nil, err
		}
		m.fsm.Register(s)
	}
	for _, s := range []ai.State{
		newIdle(m),
		newPatrol(m),
		newAlerted(m),
		newPursuit(m),
		newFeeding(m),
		newAttack(m),
		newDead(m),
	} {
		m.fsm.Register(s)
	}
	m.fsm.Start(ai.KindIdle)
	return m, nil
}

func (m *Machine) bindEating() {
	m.eatingHash = anim.Hash(m.profile.Feeding.EatingState)
	m.eatingLayer = 0
	if li, ok := m.animator.(layerIndexer); ok {
		if idx := li.LayerIndex(m.profile.Feeding.EatingLayer); idx >= 0 {
			m.eatingLayer = idx
		}
	}
}

func (m *Machine) FSM() *ai.StateMachine { return m.fsm }
func (m *Machine) ID() uuid.UUID         { return m.id }
func (m *Machine) Body() ecs.Entity      { return m.body }
func (m *Machine) Profile() Profile      { return m.profile }
func (m *Machine) Logger() *zap.Logger   { return m.log }

func (m *Machine) Speed() float64        { return m.speed }
func (m *Machine) Seeking() int          { return m.seeking }
func (m *Machine) Feeding() bool         { return m.feeding }
func (m *Machine) AttackType() int       { return m.attackType }
func (m *Machine) InMeleeRange() bool    { return m.inMeleeRange }
func (m *Machine) Satisfaction() float64 { return m.satisfaction }
func (m *Machine) Health() int           { return m.health }
func (m *Machine) Control() ControlMode  { return m.control }

// Damage returns the accumulated upper and lower body damage.
func (m *Machine) Damage() (upper, lower int) {
	return m.upperDamage, m.lowerDamage
}

// SetSatisfaction overrides the hunger level, clamped to [0, 1].
func (m *Machine) SetSatisfaction(v float64) {
	m.satisfaction = common.Clamp01(v)
}

// Dead reports whether the agent has been killed.
func (m *Machine) Dead() bool {
	return m.fsm.CurrentKind() == ai.KindDead
}

// SensorPosition is the origin of perception: the agent position raised to
// sensor height.
func (m *Machine) SensorPosition() common.Vec3 {
	return m.fsm.Transform().Position.Add(common.Up.Scale(m.profile.SensorHeight))
}

// Reload swaps the tunables between ticks. Current scalars such as health
// and satisfaction are kept.
func (m *Machine) Reload(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.profile = p
	m.fsm.StoppingDistance = p.StoppingDistance
	m.bindEating()
	m.log.Info("profile reloaded", zap.String("profile", p.Name))
	return nil
}

// FixedUpdate is the physics tick: threats are cleared, the target trigger
// is evaluated and then every stimulus inside the sensor is forwarded to
// the active state as an enter, stay or exit event.
func (m *Machine) FixedUpdate() {
	m.fsm.FixedUpdate()

	pos := m.fsm.Transform().Position
	stims := m.triggers.Overlaps(pos, m.profile.SensorRadius, sensorMask)
	slices.SortFunc(stims, func(a, b ai.Stimulus) int {
		if ra, rb := categoryRank(a.Category), categoryRank(b.Category); ra != rb {
			return ra - rb
		}
		return compareEntity(a.ID, b.ID)
	})

	current := make(map[ecs.Entity]ai.Stimulus, len(stims))
	m.inMeleeRange = false
	for _, s := range stims {
		if _, dup := current[s.ID]; dup {
			continue
		}
		current[s.ID] = s
		evt := ai.TriggerEnter
		if _, ok := m.sensed[s.ID]; ok {
			evt = ai.TriggerStay
		}
		m.fsm.Trigger(evt, s)
		if s.Category == ai.CategoryPlayer && common.Distance(pos.Flat(), s.Position.Flat()) <= m.profile.MeleeRadius {
			m.inMeleeRange = true
		}
	}

	var gone []ai.Stimulus
	for id, s := range m.sensed {
		if _, ok := current[id]; !ok {
			gone = append(gone, s)
		}
	}
	slices.SortFunc(gone, func(a, b ai.Stimulus) int { return compareEntity(a.ID, b.ID) })
	for _, s := range gone {
		m.fsm.Trigger(ai.TriggerExit, s)
	}
	m.sensed = current
}

// categoryRank orders stimuli so higher priority categories are perceived
// first within a tick.
func categoryRank(c ai.Category) int {
	switch c {
	case ai.CategoryPlayer:
		return 0
	case ai.CategoryLight:
		return 1
	case ai.CategorySound:
		return 2
	case ai.CategoryFood:
		return 3
	}
	return 4
}

func compareEntity(a, b ecs.Entity) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Update is the frame tick: the state machine decides, the animation
// parameters are pushed and satisfaction depletes with the cube of speed.
func (m *Machine) Update() {
	m.fsm.Update()

	m.animator.SetFloat(m.pSpeed, m.speed)
	m.animator.SetBool(m.pFeeding, m.feeding)
	m.animator.SetInt(m.pSeeking, m.seeking)
	m.animator.SetInt(m.pAttack, m.attackType)
	m.nav.SetSpeed(m.speed * m.profile.NavSpeed)

	dt := m.fsm.Clock().DeltaTime()
	m.satisfaction = math.Max(0, m.satisfaction-(m.profile.DepletionRate*dt/100)*math.Pow(m.speed, 3))
}

// AnimatorUpdated runs after the animation step.
func (m *Machine) AnimatorUpdated() {
	m.fsm.AnimatorUpdated()
}

// RootMotion applies a root motion request from the animation layer.
func (m *Machine) RootMotion(req anim.RootMotionRequest) {
	m.fsm.AddRootMotionRequest(req.Position, req.Rotation)
}

// TakeDamage applies a hit to region. At zero health the body goes ragdoll
// and the agent switches to Dead; hits on a dead agent are ignored.
func (m *Machine) TakeDamage(region BodyRegion, amount int) {
	if amount <= 0 || m.Dead() {
		return
	}
	m.health -= amount
	switch region {
	case RegionUpper:
		m.upperDamage += amount
	case RegionLower:
		m.lowerDamage += amount
	}
	m.log.Debug("damage taken", zap.Int("amount", amount), zap.Int("health", m.health))
	if m.health > 0 {
		return
	}
	m.control = ControlRagdoll
	if !m.fsm.ForceState(ai.KindDead) {
		m.log.Warn("no dead state registered")
	}
}

// navControl mirrors which pose channels the nav agent drives.
func (m *Machine) navControl(position, rotation bool) {
	m.nav.SetControl(position, rotation)
}

func (m *Machine) dt() float64 {
	return m.fsm.Clock().DeltaTime()
}

// faceSlerp turns toward dir by dt*speed of the remaining angle unless
// animation owns rotation.
func (m *Machine) faceSlerp(dir common.Vec3, speed float64) {
	if m.fsm.UseRootRotation() {
		return
	}
	m.fsm.Transform().SlerpTowards(dir, m.dt()*speed)
}

// faceTarget slerps toward the committed target position on the ground
// plane.
func (m *Machine) faceTarget(speed float64) {
	tr := m.fsm.Transform()
	m.faceSlerp(m.fsm.Target().Position.Sub(tr.Position).Flat(), speed)
}
