package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/anim"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
	"github.com/milk9111/horde/logging"
	"github.com/milk9111/horde/nav"
	"github.com/milk9111/horde/physics"
	"github.com/milk9111/horde/prefabs"
	"github.com/milk9111/horde/trace"
	"github.com/milk9111/horde/zombie"
)

var ErrUnknownNetwork = errors.New("sim: unknown waypoint network")

const (
	bodyRadius          = 0.3
	defaultFoodRadius   = 0.3
	defaultPlayerRadius = 0.4
	lightHeight         = 1.5
)

// Options supply the loaders and outputs a World is built with. Nil
// loaders fall back to the embedded prefabs.
type Options struct {
	Logger      *zap.Logger
	Seed        uint64
	LoadProfile func(name string) (zombie.Profile, error)
	LoadScript  func(name string) ([]byte, error)
	LoadGraph   func(name string) (anim.Graph, error)
	Recorder    *trace.Recorder
}

// Agent is one simulated zombie and the services it is wired to.
type Agent struct {
	Name      string
	Profile   string
	Body      ecs.Entity
	Collider  ecs.Entity
	Transform *common.Transform
	Machine   *zombie.Machine
	Nav       *nav.Agent
	Anim      *anim.Controller
}

type rootMotionEvent struct {
	agent int
	req   anim.RootMotionRequest
}

// World owns every simulated object and runs the fixed and frame passes.
type World struct {
	Name string

	store    *ecs.Store
	registry *ai.Registry
	space    *physics.Space
	grid     *nav.Grid
	clock    *ai.ManualClock
	rng      *rand.Rand
	log      *zap.Logger
	recorder *trace.Recorder

	agents  []*Agent
	players []*Player
	sounds  []*Sound

	byBody     ecs.SparseSet[*Agent]
	byCollider ecs.SparseSet[*Player]

	rootMotion  ecs.EventQueue[rootMotionEvent]
	transitions []trace.Transition

	fixed *ecs.Scheduler[*World]
	frame *ecs.Scheduler[*World]
	tick  uint64
}

// New builds a world from spec.
func New(spec prefabs.WorldSpec, opts Options) (*World, error) {
	log := logging.OrNop(opts.Logger).Named("sim")
	if opts.LoadProfile == nil {
		opts.LoadProfile = prefabs.LoadProfile
	}
	if opts.LoadScript == nil {
		opts.LoadScript = prefabs.LoadScript
	}
	if opts.LoadGraph == nil {
		opts.LoadGraph = prefabs.LoadAnimGraph
	}
	seed := spec.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	grid, err := nav.NewGrid(spec.Grid.Origin.Vec3(), spec.Grid.CellSize, spec.Grid.Width, spec.Grid.Depth)
	if err != nil {
		return nil, fmt.Errorf("sim: %s: %w", spec.Name, err)
	}
	graph, err := opts.LoadGraph(spec.AnimGraph)
	if err != nil {
		return nil, err
	}

	w := &World{
		Name:     spec.Name,
		store:    ecs.NewStore(),
		registry: ai.NewRegistry(),
		space:    physics.NewSpace(),
		grid:     grid,
		clock:    ai.NewManualClock(),
		rng:      rand.New(rand.NewPCG(seed, 0)),
		log:      log.With(zap.String("world", spec.Name)),
		recorder: opts.Recorder,
	}

	for _, wall := range spec.Walls {
		if err := w.addWall(wall); err != nil {
			return nil, err
		}
	}
	for _, l := range spec.Links {
		grid.AddLink(l.Link())
	}
	networks := make(map[string]prefabs.NetworkSpec, len(spec.Networks))
	for _, n := range spec.Networks {
		networks[n.Name] = n
	}

	for _, f := range spec.Food {
		if err := w.addFood(f); err != nil {
			return nil, err
		}
	}
	for _, s := range spec.Sounds {
		w.sounds = append(w.sounds, &Sound{
			Name:     s.Name,
			Position: s.Position.Vec3(),
			Radius:   s.Radius,
			Start:    s.Start,
			Duration: s.Duration,
		})
	}
	for _, ps := range spec.Players {
		if err := w.addPlayer(ps); err != nil {
			return nil, err
		}
	}
	for i, as := range spec.Agents {
		if err := w.addAgent(i, as, networks, graph, seed, opts); err != nil {
			return nil, err
		}
	}

	w.fixed = ecs.NewScheduler[*World](
		ecs.SystemFunc[*World](playerSystem),
		ecs.SystemFunc[*World](soundSystem),
		ecs.SystemFunc[*World](bodySyncSystem),
		ecs.SystemFunc[*World](perceptionSystem),
	)
	w.frame = ecs.NewScheduler[*World](
		ecs.SystemFunc[*World](decisionSystem),
		ecs.SystemFunc[*World](animationSystem),
		ecs.SystemFunc[*World](movementSystem),
		ecs.SystemFunc[*World](traceSystem),
	)

	w.log.Info("world built",
		zap.Int("agents", len(w.agents)),
		zap.Int("players", len(w.players)),
		zap.Int("colliders", w.space.Len()),
	)
	return w, nil
}

func (w *World) addWall(s prefabs.WallSpec) error {
	lo, hi := s.Min.Vec3(), s.Max.Vec3()
	center := lo.Add(hi).Scale(0.5)
	half := hi.Sub(lo).Scale(0.5)
	id := w.store.Create()
	if err := w.space.Add(physics.Collider{
		ID:          id,
		Layer:       ai.LayerDefault,
		Position:    center,
		HalfExtents: common.V(math.Abs(half.X), math.Abs(half.Y), math.Abs(half.Z)),
		Static:      true,
	}); err != nil {
		return fmt.Errorf("sim: wall %s: %w", s.Name, err)
	}
	w.grid.BlockRect(lo, hi)
	return nil
}

func (w *World) addFood(s prefabs.FoodSpec) error {
	radius := s.Radius
	if radius <= 0 {
		radius = defaultFoodRadius
	}
	id := w.store.Create()
	if err := w.space.Add(physics.Collider{
		ID:       id,
		Layer:    ai.LayerAggravator,
		Category: ai.CategoryFood,
		Position: s.Position.Vec3(),
		Radius:   radius,
		Static:   true,
	}); err != nil {
		return fmt.Errorf("sim: food %s: %w", s.Name, err)
	}
	return nil
}

func (w *World) addAgent(i int, s prefabs.AgentSpec, networks map[string]prefabs.NetworkSpec, graph anim.Graph, seed uint64, opts Options) error {
	profile := zombie.DefaultProfile()
	if s.Profile != "" {
		p, err := opts.LoadProfile(s.Profile)
		if err != nil {
			return fmt.Errorf("sim: agent %s: %w", s.Name, err)
		}
		profile = p
	}

	var network *ai.Network
	if s.Network != "" {
		ns, ok := networks[s.Network]
		if !ok {
			return fmt.Errorf("%w: agent %s wants %q", ErrUnknownNetwork, s.Name, s.Network)
		}
		points := make([]common.Vec3, 0, len(ns.Points))
		for _, p := range ns.Points {
			points = append(points, p.Vec3())
		}
		network = ai.NewNetwork(ns.Name, ns.Random || profile.RandomPatrol, points...)
	}

	tr := common.NewTransform(s.Position.Vec3(), common.Forward)
	tr.SetYaw(s.Yaw)
	a := &Agent{
		Name:      s.Name,
		Profile:   s.Profile,
		Body:      w.store.Create(),
		Collider:  w.store.Create(),
		Transform: &tr,
	}
	idx := len(w.agents)
	ctrl, err := anim.NewController(graph, func(req anim.RootMotionRequest) {
		w.rootMotion.Push(rootMotionEvent{agent: idx, req: req})
	})
	if err != nil {
		return fmt.Errorf("sim: agent %s: %w", s.Name, err)
	}
	a.Anim = ctrl
	a.Nav = nav.NewAgent(w.grid, a.Transform)

	if err := w.space.Add(physics.Collider{
		ID:       a.Collider,
		Body:     a.Body,
		Layer:    ai.LayerBodyPart,
		Position: tr.Position,
		Forward:  tr.Forward,
		Radius:   bodyRadius,
	}); err != nil {
		return fmt.Errorf("sim: agent %s: %w", s.Name, err)
	}

	m, err := zombie.New(profile, zombie.Deps{
		Name:       s.Name,
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s/%s/%d", w.Name, s.Name, i)),
		Body:       a.Body,
		Transform:  a.Transform,
		Clock:      w.clock,
		Logger:     w.log,
		Rand:       rand.New(rand.NewPCG(seed, uint64(i)+1)),
		Network:    network,
		Registry:   w.registry,
		Rays:       w.space,
		Triggers:   w.space,
		Nav:        a.Nav,
		Animator:   ctrl,
		LoadScript: opts.LoadScript,
	})
	if err != nil {
		return fmt.Errorf("sim: agent %s: %w", s.Name, err)
	}
	a.Machine = m
	m.FSM().OnTransition(func(from, to ai.StateKind) {
		w.transitions = append(w.transitions, trace.Transition{Agent: a.Name, From: from.String(), To: to.String()})
	})
	w.agents = append(w.agents, a)
	w.byBody.Set(a.Body, a)
	return nil
}

// Step advances the world by dt: one fixed pass then one frame pass.
// Transitions reports the state changes of the latest step.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.clock.Advance(dt)
	w.tick++
	w.transitions = w.transitions[:0]
	w.fixed.Update(w)
	w.frame.Update(w)
}

// ReloadProfile swaps the tunables of every agent built from the named
// profile. It returns how many agents took the new profile.
func (w *World) ReloadProfile(name string, p zombie.Profile) (int, error) {
	var n int
	for _, a := range w.agents {
		if a.Profile != name {
			continue
		}
		if err := a.Machine.Reload(p); err != nil {
			return n, fmt.Errorf("sim: reload %s: %w", a.Name, err)
		}
		n++
	}
	return n, nil
}

// UsesProfile reports whether any agent was built from the named profile.
func (w *World) UsesProfile(name string) bool {
	for _, a := range w.agents {
		if a.Profile == name {
			return true
		}
	}
	return false
}

func (w *World) Agents() []*Agent                { return w.agents }
func (w *World) Players() []*Player              { return w.players }
func (w *World) Space() *physics.Space           { return w.space }
func (w *World) Grid() *nav.Grid                 { return w.grid }
func (w *World) Registry() *ai.Registry          { return w.registry }
func (w *World) Clock() *ai.ManualClock          { return w.clock }
func (w *World) Tick() uint64                    { return w.tick }
func (w *World) Now() float64                    { return w.clock.Now() }
func (w *World) Sounds() []*Sound                { return w.sounds }
func (w *World) Transitions() []trace.Transition { return w.transitions }

// Agent looks up an agent by name.
func (w *World) Agent(name string) (*Agent, bool) {
	for _, a := range w.agents {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// AgentByBody resolves the agent owning body.
func (w *World) AgentByBody(body ecs.Entity) (*Agent, bool) {
	return w.byBody.Get(body)
}

// PlayerByCollider resolves the player owning a collider.
func (w *World) PlayerByCollider(collider ecs.Entity) (*Player, bool) {
	return w.byCollider.Get(collider)
}

// Damage applies a hit to the agent owning body.
func (w *World) Damage(body ecs.Entity, region zombie.BodyRegion, amount int) bool {
	a, ok := w.byBody.Get(body)
	if !ok {
		return false
	}
	a.Machine.TakeDamage(region, amount)
	return true
}

// Player looks up a player by name.
func (w *World) Player(name string) (*Player, bool) {
	for _, p := range w.players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

