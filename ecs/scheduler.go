package ecs

// System updates a world context once per scheduler pass.
type System[C any] interface {
	Update(ctx C)
}

// SystemFunc adapts a function to a System.
type SystemFunc[C any] func(ctx C)

func (f SystemFunc[C]) Update(ctx C) {
	f(ctx)
}

// Scheduler runs systems strictly in registration order.
type Scheduler[C any] struct {
	systems []System[C]
}

func NewScheduler[C any](systems ...System[C]) *Scheduler[C] {
	s := &Scheduler[C]{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler[C]) Add(system System[C]) {
	if s == nil || system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler[C]) Update(ctx C) {
	if s == nil {
		return
	}
	for _, system := range s.systems {
		system.Update(ctx)
	}
}

func (s *Scheduler[C]) Systems() []System[C] {
	if s == nil {
		return nil
	}
	systems := make([]System[C], 0, len(s.systems))
	return append(systems, s.systems...)
}
