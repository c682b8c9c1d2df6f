package sim

import (
	"go.uber.org/zap"

	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/trace"
)

func playerSystem(w *World) {
	dt := w.clock.DeltaTime()
	now := w.clock.Now()
	for _, p := range w.players {
		p.advance(dt)
		if err := w.space.Move(p.Collider, p.Transform.Position, p.Transform.Forward); err != nil {
			w.log.Warn("player collider", zap.String("player", p.Name), zap.Error(err))
		}
		if p.Light.Valid() {
			light := p.Transform.Position.Add(common.Up.Scale(lightHeight))
			if err := w.space.Move(p.Light, light, p.Transform.Forward); err != nil {
				w.log.Warn("flashlight collider", zap.String("player", p.Name), zap.Error(err))
			}
		}
		if fs := p.footsteps; fs != nil && p.moved && now-p.lastStep >= fs.Interval {
			p.lastStep = now
			duration := fs.Duration
			if duration <= 0 {
				duration = dt
			}
			w.EmitSound(p.Name+"_step", p.Transform.Position, fs.Radius, duration)
		}
	}
}

func soundSystem(w *World) {
	now := w.clock.Now()
	kept := w.sounds[:0]
	for _, s := range w.sounds {
		w.updateSound(s, now)
		if s.transient && s.done {
			continue
		}
		kept = append(kept, s)
	}
	clear(w.sounds[len(kept):])
	w.sounds = kept
}

func bodySyncSystem(w *World) {
	for _, a := range w.agents {
		if err := w.space.Move(a.Collider, a.Transform.Position, a.Transform.Forward); err != nil {
			w.log.Warn("agent collider", zap.String("agent", a.Name), zap.Error(err))
		}
	}
}

func perceptionSystem(w *World) {
	for _, a := range w.agents {
		a.Machine.FixedUpdate()
	}
}

func decisionSystem(w *World) {
	for _, a := range w.agents {
		a.Machine.Update()
	}
}

// animationSystem steps every controller, then hands the root motion
// requests raised by state changes to their agents before the post
// animation hook runs.
func animationSystem(w *World) {
	for _, a := range w.agents {
		a.Anim.Tick()
	}
	for _, evt := range w.rootMotion.Drain() {
		if evt.agent < 0 || evt.agent >= len(w.agents) {
			continue
		}
		w.agents[evt.agent].Machine.RootMotion(evt.req)
	}
	for _, a := range w.agents {
		a.Machine.AnimatorUpdated()
	}
}

// movementSystem moves bodies. Link traversals take precedence; otherwise
// root motion sets the distance walked along the path when animation owns
// position, and the nav agent speed does when it does not.
func movementSystem(w *World) {
	dt := w.clock.DeltaTime()
	for _, a := range w.agents {
		a.Nav.Tick()
		fsm := a.Machine.FSM()
		if a.Machine.Dead() {
			continue
		}

		switch {
		case a.Nav.OnLink():
			pos, done := a.Nav.LinkTraversal().Step(dt)
			a.Transform.Position = pos
			if done {
				a.Nav.CompleteLink()
			}
		case fsm.UseRootPosition():
			delta := a.Anim.DeltaPosition(a.Transform.Forward, dt)
			if updatePos, _ := a.Nav.Control(); updatePos {
				a.Nav.MoveAlong(delta.Len())
			} else {
				a.Transform.Position = a.Transform.Position.Add(delta)
			}
		default:
			a.Nav.Advance(dt)
		}

		if fsm.UseRootRotation() {
			a.Transform.Rotate(a.Anim.DeltaRotation(dt))
		}
	}
}

func traceSystem(w *World) {
	if w.recorder == nil {
		return
	}
	e := trace.Entry{
		Tick:        w.tick,
		Time:        w.clock.Now(),
		Agents:      make([]trace.Agent, 0, len(w.agents)),
		Transitions: append([]trace.Transition(nil), w.transitions...),
	}
	for _, a := range w.agents {
		e.Agents = append(e.Agents, snapshot(a))
	}
	if err := w.recorder.Write(e); err != nil {
		w.log.Warn("trace write", zap.Error(err))
	}
}

func snapshot(a *Agent) trace.Agent {
	m := a.Machine
	pos := a.Transform.Position
	return trace.Agent{
		Name:         a.Name,
		ID:           m.ID().String(),
		State:        m.FSM().CurrentKind().String(),
		Target:       m.FSM().Target().Kind.String(),
		Position:     trace.Vec{X: pos.X, Y: pos.Y, Z: pos.Z},
		Yaw:          a.Transform.Yaw(),
		Speed:        m.Speed(),
		Satisfaction: m.Satisfaction(),
		Health:       m.Health(),
	}
}
