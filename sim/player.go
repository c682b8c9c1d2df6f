package sim

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
	"github.com/milk9111/horde/physics"
	"github.com/milk9111/horde/prefabs"
)

// Player walks a scripted route. A flashlight is a light stimulus that
// follows the player; footsteps leave short-lived sound stimuli.
type Player struct {
	Name      string
	ID        uuid.UUID
	Body      ecs.Entity
	Collider  ecs.Entity
	Light     ecs.Entity
	Transform common.Transform
	Speed     float64
	Route     []common.Vec3
	Loop      bool

	next      int
	stopped   bool
	moved     bool
	footsteps *prefabs.FootstepSpec
	lastStep  float64
}

// Moving reports whether the player moved during the last fixed pass.
func (p *Player) Moving() bool { return p.moved }

// Stop freezes the player in place.
func (p *Player) Stop() { p.stopped = true }

// Teleport places the player at pos and faces it along forward.
func (p *Player) Teleport(pos, forward common.Vec3) {
	p.Transform.Position = pos
	p.Transform.LookDirection(forward)
}

func (p *Player) advance(dt float64) {
	p.moved = false
	if p.stopped || len(p.Route) == 0 || p.Speed <= 0 {
		return
	}
	dist := p.Speed * dt
	for dist > 0 && p.next < len(p.Route) {
		goal := p.Route[p.next]
		to := goal.Sub(p.Transform.Position).Flat()
		d := to.Len()
		if d <= dist {
			p.Transform.Position.X, p.Transform.Position.Z = goal.X, goal.Z
			dist -= d
			p.moved = p.moved || d > 0
			p.next++
			if p.next == len(p.Route) && p.Loop {
				p.next = 0
			}
			if d == 0 {
				break
			}
			continue
		}
		p.Transform.LookDirection(to)
		p.Transform.Position = p.Transform.Position.Add(to.Scale(dist / d))
		p.moved = true
		dist = 0
	}
}

// Sound is a sound emitter. Scheduled sounds are active from Start for
// Duration seconds; a zero Duration never expires.
type Sound struct {
	Name     string
	ID       ecs.Entity
	Position common.Vec3
	Radius   float64
	Start    float64
	Duration float64

	transient bool
	active    bool
	done      bool
}

func (s *Sound) Active() bool { return s.active }

func (w *World) addPlayer(s prefabs.PlayerSpec) error {
	radius := s.Radius
	if radius <= 0 {
		radius = defaultPlayerRadius
	}
	p := &Player{
		Name:      s.Name,
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s/player/%s", w.Name, s.Name)),
		Body:      w.store.Create(),
		Collider:  w.store.Create(),
		Speed:     s.Speed,
		Loop:      s.Loop,
		footsteps: s.Footsteps,
	}
	for _, r := range s.Route {
		p.Route = append(p.Route, r.Vec3())
	}
	start := common.Zero
	facing := common.Forward
	if len(p.Route) > 0 {
		start = p.Route[0]
		p.next = 1 % len(p.Route)
		if len(p.Route) > 1 {
			facing = p.Route[1].Sub(start)
		}
	}
	p.Transform = common.NewTransform(start, facing)

	if err := w.space.Add(physics.Collider{
		ID:       p.Collider,
		Body:     p.Body,
		Layer:    ai.LayerPlayer,
		Category: ai.CategoryPlayer,
		Position: p.Transform.Position,
		Forward:  p.Transform.Forward,
		Radius:   radius,
	}); err != nil {
		return fmt.Errorf("sim: player %s: %w", s.Name, err)
	}
	if fl := s.Flashlight; fl != nil {
		p.Light = w.store.Create()
		beam := fl.Radius
		if beam <= 0 {
			beam = fl.Depth / 2
		}
		if err := w.space.Add(physics.Collider{
			ID:         p.Light,
			Body:       p.Body,
			Layer:      ai.LayerAggravator,
			Category:   ai.CategoryLight,
			Position:   p.Transform.Position.Add(common.Up.Scale(lightHeight)),
			Forward:    p.Transform.Forward,
			Offset:     common.V(0, 0, fl.Depth/2),
			Radius:     beam,
			LightDepth: fl.Depth,
		}); err != nil {
			return fmt.Errorf("sim: player %s flashlight: %w", s.Name, err)
		}
	}
	w.registry.RegisterPlayer(p.Collider, ai.PlayerInfo{
		ID:       p.ID,
		Name:     p.Name,
		Collider: p.Collider,
		Body:     p.Body,
	})
	w.players = append(w.players, p)
	w.byCollider.Set(p.Collider, p)
	return nil
}

// EmitSound starts a transient sound at pos lasting duration seconds.
func (w *World) EmitSound(name string, pos common.Vec3, radius, duration float64) *Sound {
	s := &Sound{
		Name:      name,
		Position:  pos,
		Radius:    radius,
		Start:     w.clock.Now(),
		Duration:  duration,
		transient: true,
	}
	w.sounds = append(w.sounds, s)
	w.updateSound(s, w.clock.Now())
	return s
}

func (w *World) updateSound(s *Sound, now float64) {
	if s.done {
		return
	}
	expired := s.Duration > 0 && now >= s.Start+s.Duration
	switch {
	case !s.active && now >= s.Start && !expired:
		s.ID = w.store.Create()
		if err := w.space.Add(physics.Collider{
			ID:          s.ID,
			Layer:       ai.LayerTrigger,
			Category:    ai.CategorySound,
			Position:    s.Position,
			Radius:      s.Radius,
			Static:      true,
			SoundRadius: s.Radius,
		}); err != nil {
			w.log.Warn("sound rejected", zap.String("sound", s.Name), zap.Error(err))
			s.done = true
			return
		}
		s.active = true
	case s.active && expired:
		if err := w.space.Remove(s.ID); err != nil {
			w.log.Warn("sound removal", zap.String("sound", s.Name), zap.Error(err))
		}
		w.store.Destroy(s.ID)
		s.active = false
		s.done = true
	case !s.active && expired:
		s.done = true
	}
}
