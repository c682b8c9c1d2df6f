package zombie

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/horde/ai"
)

const lifecycleDispatch = `
if __phase == "enter" {
	onEnter(__engine, __state, __current_state)
} else if __phase == "update" {
	update(__engine, __state, __current_state)
} else if __phase == "exit" {
	onExit(__engine, __state, __current_state)
}
`

// ScriptedState runs a state's enter, update and exit phases from a tengo
// script. The script defines onEnter, update and onExit, each called with
// an engine object, a persistent state map and the current state name.
// update requests a transition by calling engine.transition(name).
type ScriptedState struct {
	zombieState
	kind      ai.StateKind
	path      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
	pending   ai.StateKind
}

// NewScriptedState compiles src into a state of the given kind.
func NewScriptedState(m *Machine, kind ai.StateKind, path string, src []byte) (*ScriptedState, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + lifecycleDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__current_state", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("zombie: compile %s: %w", path, err)
	}
	return &ScriptedState{
		zombieState: zombieState{m: m},
		kind:        kind,
		path:        path,
		compiled:    compiled,
		stateData:   &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (s *ScriptedState) Kind() ai.StateKind { return s.kind }

// Path returns the script the state was compiled from.
func (s *ScriptedState) Path() string { return s.path }

func (s *ScriptedState) OnEnter() {
	s.pending = ai.KindNone
	s.run("enter")
}

func (s *ScriptedState) OnExit() {
	s.run("exit")
}

func (s *ScriptedState) OnUpdate() ai.StateKind {
	s.pending = ai.KindNone
	if !s.run("update") || s.pending == ai.KindNone {
		return s.kind
	}
	return s.pending
}

func (s *ScriptedState) run(phase string) bool {
	if err := s.runPhase(phase); err != nil {
		s.m.log.Warn("script phase failed", zap.String("script", s.path), zap.String("phase", phase), zap.Error(err))
		return false
	}
	return true
}

func (s *ScriptedState) runPhase(phase string) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engine()); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.stateData); err != nil {
		return err
	}
	if err := s.compiled.Set("__current_state", s.kind.String()); err != nil {
		return err
	}
	return s.compiled.Run()
}

// engine exposes read-only facts about the agent and the actions a script
// may take.
func (s *ScriptedState) engine() *tengo.ImmutableMap {
	m := s.m
	fsm := m.fsm
	values := map[string]tengo.Object{
		"visual_threat":   &tengo.String{Value: fsm.VisualThreat.Kind.String()},
		"visual_distance": &tengo.Float{Value: finite(fsm.VisualThreat.Distance)},
		"audio_threat":    &tengo.String{Value: fsm.AudioThreat.Kind.String()},
		"audio_distance":  &tengo.Float{Value: finite(fsm.AudioThreat.Distance)},
		"target":          &tengo.String{Value: fsm.Target().Kind.String()},
		"target_reached":  boolObject(fsm.TargetReached()),
		"in_melee":        boolObject(m.inMeleeRange),
		"satisfaction":    &tengo.Float{Value: m.satisfaction},
		"health":          &tengo.Int{Value: int64(m.health)},
		"aggression":      &tengo.Float{Value: m.profile.Aggression},
		"intelligence":    &tengo.Float{Value: m.profile.Intelligence},
		"now":             &tengo.Float{Value: fsm.Clock().Now()},
		"dt":              &tengo.Float{Value: m.dt()},
	}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		kind, err := ai.ParseStateKind(objectAsString(args[0]))
		if err != nil {
			return tengo.FalseValue, nil
		}
		s.pending = kind
		return tengo.TrueValue, nil
	}}

	values["set_speed"] = &tengo.UserFunction{Name: "set_speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := tengo.ToFloat64(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		m.speed = v
		return tengo.TrueValue, nil
	}}

	values["set_seeking"] = &tengo.UserFunction{Name: "set_seeking", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := tengo.ToInt(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		m.seeking = max(-1, min(1, v))
		return tengo.TrueValue, nil
	}}

	values["set_attack"] = &tengo.UserFunction{Name: "set_attack", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := tengo.ToInt(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		m.attackType = v
		return tengo.TrueValue, nil
	}}

	values["target_visual"] = &tengo.UserFunction{Name: "target_visual", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if fsm.VisualThreat.IsNone() {
			return tengo.FalseValue, nil
		}
		fsm.SetTargetFrom(fsm.VisualThreat)
		return tengo.TrueValue, nil
	}}

	values["random"] = &tengo.UserFunction{Name: "random", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: fsm.Rand().Float64()}, nil
	}}

	values["random_int"] = &tengo.UserFunction{Name: "random_int", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return &tengo.Int{Value: 0}, nil
		}
		lo, ok1 := tengo.ToInt(args[0])
		hi, ok2 := tengo.ToInt(args[1])
		if !ok1 || !ok2 || hi <= lo {
			return &tengo.Int{Value: int64(lo)}, nil
		}
		return &tengo.Int{Value: int64(lo + fsm.Rand().IntN(hi-lo))}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		m.log.Debug("script", zap.String("script", s.path), zap.String("msg", strings.Join(parts, " ")))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// finite maps the cleared-target sentinel to -1 for scripts.
func finite(v float64) float64 {
	if math.IsInf(v, 1) {
		return -1
	}
	return v
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
