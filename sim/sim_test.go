package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/prefabs"
	"github.com/milk9111/horde/trace"
	"github.com/milk9111/horde/zombie"
)

const step = 0.05

func v(x, z float64) prefabs.Vec3Spec { return prefabs.Vec3Spec{X: x, Z: z} }

func watcherProfile(string) (zombie.Profile, error) {
	p := zombie.DefaultProfile()
	p.Name = "watcher"
	p.FOV = 90
	p.Sight = 1
	p.Intelligence = 1
	p.Idle.Time = zombie.Range{Min: 100, Max: 100}
	return p, nil
}

func arena() prefabs.WorldSpec {
	return prefabs.WorldSpec{
		Name: "arena",
		Seed: 1,
		Grid: prefabs.GridSpec{Origin: prefabs.Vec3Spec{X: -20, Z: -20}, CellSize: 1, Width: 40, Depth: 40},
		Networks: []prefabs.NetworkSpec{
			{Name: "loop", Points: []prefabs.Vec3Spec{v(-10, -10), v(10, -10)}},
		},
		Agents: []prefabs.AgentSpec{
			{Name: "z", Profile: "watcher.yaml", Network: "loop"},
		},
	}
}

func newWorld(t *testing.T, spec prefabs.WorldSpec, opts Options) *World {
	t.Helper()
	if opts.LoadProfile == nil {
		opts.LoadProfile = watcherProfile
	}
	w, err := New(spec, opts)
	require.NoError(t, err)
	return w
}

func standingPlayer(x, z float64) prefabs.PlayerSpec {
	return prefabs.PlayerSpec{Name: "p", Route: []prefabs.Vec3Spec{v(x, z)}}
}

func TestVisiblePlayerStartsPursuit(t *testing.T) {
	spec := arena()
	spec.Players = []prefabs.PlayerSpec{standingPlayer(0, 5)}
	w := newWorld(t, spec, Options{})

	a, ok := w.Agent("z")
	require.True(t, ok)
	require.Equal(t, ai.KindIdle, a.Machine.FSM().CurrentKind())

	w.Step(step)
	require.Equal(t, ai.KindPursuit, a.Machine.FSM().CurrentKind())
	require.Equal(t, ai.TargetVisualPlayer, a.Machine.FSM().Target().Kind)

	p, ok := w.Player("p")
	require.True(t, ok)
	require.Equal(t, p.Collider, a.Machine.FSM().Target().Source)
	require.Len(t, w.Transitions(), 1)
	require.Equal(t, trace.Transition{Agent: "z", From: "idle", To: "pursuit"}, w.Transitions()[0])

	info, ok := w.Registry().Player(p.Collider)
	require.True(t, ok)
	require.Equal(t, "p", info.Name)
}

func TestPursuitClosesDistance(t *testing.T) {
	spec := arena()
	spec.Players = []prefabs.PlayerSpec{standingPlayer(0, 6)}
	w := newWorld(t, spec, Options{})
	a, _ := w.Agent("z")

	for range 20 {
		w.Step(step)
	}
	require.Equal(t, ai.KindPursuit, a.Machine.FSM().CurrentKind())
	require.True(t, a.Machine.FSM().UseRootPosition())
	require.Less(t, a.Transform.Position.Z, 5.5)
	require.Greater(t, a.Transform.Position.Z, 0.5)
}

func TestWallBlocksSight(t *testing.T) {
	spec := arena()
	spec.Players = []prefabs.PlayerSpec{standingPlayer(0, 5)}
	spec.Walls = []prefabs.WallSpec{{Name: "w", Min: v(-2, 2), Max: v(2, 3)}}
	w := newWorld(t, spec, Options{})
	a, _ := w.Agent("z")

	for range 5 {
		w.Step(step)
	}
	require.Equal(t, ai.KindIdle, a.Machine.FSM().CurrentKind())
	require.Equal(t, ai.TargetNone, a.Machine.FSM().VisualThreat.Kind)

	c, _ := w.Grid().CellOf(v(0, 2.5).Vec3())
	require.True(t, w.Grid().Blocked(c))
}

func TestFootstepsAlertAgent(t *testing.T) {
	spec := arena()
	spec.Players = []prefabs.PlayerSpec{{
		Name:      "p",
		Speed:     1,
		Route:     []prefabs.Vec3Spec{v(-3, -4), v(3, -4)},
		Footsteps: &prefabs.FootstepSpec{Radius: 8, Duration: 0.5},
	}}
	w := newWorld(t, spec, Options{})
	a, _ := w.Agent("z")

	w.Step(step)
	p, _ := w.Player("p")
	require.True(t, p.Moving())
	require.Equal(t, ai.KindAlerted, a.Machine.FSM().CurrentKind())
	require.Equal(t, ai.TargetAudio, a.Machine.FSM().Target().Kind)
	require.NotEmpty(t, w.Sounds())
}

func TestScheduledSoundExpires(t *testing.T) {
	spec := arena()
	spec.Sounds = []prefabs.SoundSpec{{Name: "alarm", Position: v(30, 30), Radius: 2, Start: 0.1, Duration: 0.1}}
	w := newWorld(t, spec, Options{})
	s := w.Sounds()[0]
	before := w.Space().Len()

	w.Step(step)
	require.False(t, s.Active())
	w.Step(step)
	w.Step(step)
	require.True(t, s.Active())
	require.Equal(t, before+1, w.Space().Len())
	for range 4 {
		w.Step(step)
	}
	require.False(t, s.Active())
	require.Equal(t, before, w.Space().Len())
	require.Len(t, w.Sounds(), 1)
}

func TestFlashlightFollowsPlayer(t *testing.T) {
	spec := arena()
	spec.Agents = nil
	spec.Players = []prefabs.PlayerSpec{{
		Name:       "p",
		Speed:      2,
		Route:      []prefabs.Vec3Spec{v(0, 0), v(0, 10)},
		Flashlight: &prefabs.FlashlightSpec{Depth: 8},
	}}
	w := newWorld(t, spec, Options{})
	p, _ := w.Player("p")
	require.True(t, p.Light.Valid())

	for range 10 {
		w.Step(step)
	}
	c, ok := w.Space().Collider(p.Light)
	require.True(t, ok)
	require.InDelta(t, p.Transform.Position.Z, c.Position.Z, 1e-9)
	require.Equal(t, 8.0, c.LightDepth)
	require.InDelta(t, 1.0, p.Transform.Position.Z, 1e-9)
}

func TestUnknownNetwork(t *testing.T) {
	spec := arena()
	spec.Agents[0].Network = "nowhere"
	_, err := New(spec, Options{LoadProfile: watcherProfile})
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestTraceRecordsSteps(t *testing.T) {
	var buf bytes.Buffer
	rec, err := trace.NewRecorder(&buf)
	require.NoError(t, err)

	spec := arena()
	spec.Players = []prefabs.PlayerSpec{standingPlayer(0, 5)}
	w := newWorld(t, spec, Options{Recorder: rec})
	for range 3 {
		w.Step(step)
	}
	require.NoError(t, rec.Close())

	var entries []trace.Entry
	require.NoError(t, trace.Read(&buf, func(e trace.Entry) error {
		entries = append(entries, e)
		return nil
	}))
	require.Len(t, entries, 3)
	require.Equal(t, uint64(1), entries[0].Tick)
	require.Equal(t, []trace.Transition{{Agent: "z", From: "idle", To: "pursuit"}}, entries[0].Transitions)
	require.Empty(t, entries[1].Transitions)
	require.Equal(t, "pursuit", entries[2].Agents[0].State)
	require.Equal(t, "visual_player", entries[2].Agents[0].Target)
}

func TestEmbeddedWorldRuns(t *testing.T) {
	spec, err := prefabs.LoadWorld("world.yaml")
	require.NoError(t, err)
	w, err := New(spec, Options{})
	require.NoError(t, err)
	require.Len(t, w.Agents(), 3)
	require.Len(t, w.Players(), 1)
	bodies, players := w.Registry().Len()
	require.Equal(t, 3, bodies)
	require.Equal(t, 1, players)

	brute, ok := w.Agent("brute")
	require.True(t, ok)
	s, ok := brute.Machine.FSM().State(ai.KindAttack)
	require.True(t, ok)
	require.IsType(t, &zombie.ScriptedState{}, s)

	for range 200 {
		w.Step(0.02)
	}
	require.Equal(t, uint64(200), w.Tick())
	require.InDelta(t, 4.0, w.Now(), 1e-9)
	for _, a := range w.Agents() {
		require.NotEqual(t, ai.KindNone, a.Machine.FSM().CurrentKind(), a.Name)
	}

	require.True(t, w.UsesProfile("zombie.yaml"))
	p, err := prefabs.LoadProfile("zombie.yaml")
	require.NoError(t, err)
	p.Aggression = 0.9
	n, err := w.ReloadProfile("zombie.yaml", p)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	walker, _ := w.Agent("walker_1")
	require.Equal(t, 0.9, walker.Machine.Profile().Aggression)

	n, err = w.ReloadProfile("missing.yaml", p)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStepIgnoresNonPositiveDelta(t *testing.T) {
	w := newWorld(t, arena(), Options{})
	w.Step(0)
	w.Step(-1)
	require.Zero(t, w.Tick())
}

func TestDamageByBody(t *testing.T) {
	spec := arena()
	spec.Players = []prefabs.PlayerSpec{standingPlayer(8, 8)}
	w := newWorld(t, spec, Options{})
	a, _ := w.Agent("z")

	got, ok := w.AgentByBody(a.Body)
	require.True(t, ok)
	require.Same(t, a, got)
	_, ok = w.AgentByBody(a.Collider)
	require.False(t, ok)

	p, _ := w.Player("p")
	pc, ok := w.PlayerByCollider(p.Collider)
	require.True(t, ok)
	require.Same(t, p, pc)

	require.True(t, w.Damage(a.Body, zombie.RegionUpper, 40))
	require.Equal(t, 60, a.Machine.Health())
	require.True(t, w.Damage(a.Body, zombie.RegionLower, 60))
	require.True(t, a.Machine.Dead())
	require.Equal(t, zombie.ControlRagdoll, a.Machine.Control())
	require.False(t, w.Damage(p.Collider, zombie.RegionUpper, 1))

	before := *a.Transform
	for range 5 {
		w.Step(step)
	}
	require.Equal(t, ai.KindDead, a.Machine.FSM().CurrentKind())
	require.Equal(t, before.Position, a.Transform.Position)
}
