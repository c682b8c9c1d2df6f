package anim

import (
	"fmt"

	"github.com/milk9111/horde/ai"
)

// Op is a parameter comparison.
type Op string

const (
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpEqual        Op = "=="
	OpNotEqual     Op = "!="
)

// Condition compares a parameter against a constant. Bools read as 0 or 1.
type Condition struct {
	Param string
	Op    Op
	Value float64
}

// StateDef is one animation graph state. While it is the current state of
// its layer it holds RootPosition/RootRotation root motion requests.
// RootSpeed is forward root motion in units per second per unit of the
// Speed parameter; TurnRate is root rotation in degrees per second per unit
// of the Seeking parameter.
type StateDef struct {
	Name         string
	When         []Condition
	RootPosition int
	RootRotation int
	RootSpeed    float64
	TurnRate     float64
}

// LayerDef is an ordered list of states; the first whose conditions all
// hold is current.
type LayerDef struct {
	Name   string
	States []StateDef
}

// Graph is a layered animation graph.
type Graph struct {
	Layers []LayerDef
}

// Validate reports whether g compiles.
func (g Graph) Validate() error {
	_, err := compile(g)
	return err
}

type compiledCondition struct {
	param ai.ParamID
	op    Op
	value float64
}

type compiledState struct {
	def  StateDef
	hash uint64
	when []compiledCondition
}

type compiledLayer struct {
	name   string
	states []compiledState
}

func compile(g Graph) ([]compiledLayer, error) {
	layers := make([]compiledLayer, 0, len(g.Layers))
	for _, l := range g.Layers {
		if len(l.States) == 0 {
			return nil, fmt.Errorf("anim: layer %q has no states", l.Name)
		}
		cl := compiledLayer{name: l.Name}
		for _, s := range l.States {
			if s.Name == "" {
				return nil, fmt.Errorf("anim: layer %q has an unnamed state", l.Name)
			}
			cs := compiledState{def: s, hash: Hash(s.Name)}
			for _, c := range s.When {
				switch c.Op {
				case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual:
				default:
					return nil, fmt.Errorf("anim: state %q: unknown op %q", s.Name, c.Op)
				}
				cs.when = append(cs.when, compiledCondition{param: Param(c.Param), op: c.Op, value: c.Value})
			}
			cl.states = append(cl.states, cs)
		}
		layers = append(layers, cl)
	}
	return layers, nil
}

func (c compiledCondition) holds(v float64) bool {
	switch c.op {
	case OpGreater:
		return v > c.value
	case OpGreaterEqual:
		return v >= c.value
	case OpLess:
		return v < c.value
	case OpLessEqual:
		return v <= c.value
	case OpEqual:
		return v == c.value
	case OpNotEqual:
		return v != c.value
	}
	return false
}

// DefaultZombieGraph is the built-in locomotion, eating and attack graph.
func DefaultZombieGraph() Graph {
	return Graph{Layers: []LayerDef{
		{
			Name: LayerBase,
			States: []StateDef{
				{
					Name:         "TurnOnSpot",
					When:         []Condition{{Param: ParamSpeed, Op: OpLess, Value: 0.1}, {Param: ParamSeeking, Op: OpNotEqual, Value: 0}},
					RootRotation: 1,
					TurnRate:     90,
				},
				{
					Name: "Idle",
					When: []Condition{{Param: ParamSpeed, Op: OpLess, Value: 0.1}},
				},
				{
					Name:         "Locomotion",
					RootPosition: 1,
					RootSpeed:    1.5,
				},
			},
		},
		{
			Name: LayerEating,
			States: []StateDef{
				{Name: StateFeeding, When: []Condition{{Param: ParamFeeding, Op: OpEqual, Value: 1}}},
				{Name: "Empty"},
			},
		},
		{
			Name: LayerAttack,
			States: []StateDef{
				{Name: "Swipe", When: []Condition{{Param: ParamAttack, Op: OpGreater, Value: 0}}, RootRotation: 1, TurnRate: 0},
				{Name: "Empty"},
			},
		},
	}}
}
