package anim

import (
	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// RootMotionRequest is emitted when a state that requests root motion is
// entered (positive counts) or exited (negative counts).
type RootMotionRequest struct {
	Position int
	Rotation int
	State    string
}

// Controller evaluates a Graph against its parameters. It implements
// ai.Animator.
type Controller struct {
	layers  []compiledLayer
	params  map[ai.ParamID]float64
	current []int
	emit    func(RootMotionRequest)

	speed   ai.ParamID
	seeking ai.ParamID
}

var _ ai.Animator = (*Controller)(nil)

// NewController compiles g. emit receives root motion requests from state
// enter and exit callbacks and may be nil.
func NewController(g Graph, emit func(RootMotionRequest)) (*Controller, error) {
	layers, err := compile(g)
	if err != nil {
		return nil, err
	}
	current := make([]int, len(layers))
	for i := range current {
		current[i] = -1
	}
	return &Controller{
		layers:  layers,
		params:  make(map[ai.ParamID]float64),
		current: current,
		emit:    emit,
		speed:   Param(ParamSpeed),
		seeking: Param(ParamSeeking),
	}, nil
}

func (c *Controller) SetFloat(id ai.ParamID, v float64) {
	if c == nil {
		return
	}
	c.params[id] = v
}

func (c *Controller) SetBool(id ai.ParamID, v bool) {
	if c == nil {
		return
	}
	if v {
		c.params[id] = 1
	} else {
		c.params[id] = 0
	}
}

func (c *Controller) SetInt(id ai.ParamID, v int) {
	if c == nil {
		return
	}
	c.params[id] = float64(v)
}

// Float returns a parameter value, zero when unset.
func (c *Controller) Float(id ai.ParamID) float64 {
	if c == nil {
		return 0
	}
	return c.params[id]
}

// LayerIndex returns the index of the named layer, -1 if absent.
func (c *Controller) LayerIndex(name string) int {
	if c == nil {
		return -1
	}
	for i, l := range c.layers {
		if l.name == name {
			return i
		}
	}
	return -1
}

// CurrentStateHash returns the hash of the current state of layer, zero
// before the first Tick or for an unknown layer.
func (c *Controller) CurrentStateHash(layer int) uint64 {
	if def, ok := c.currentDef(layer); ok {
		return def.hash
	}
	return 0
}

// CurrentState returns the name of the current state of layer.
func (c *Controller) CurrentState(layer int) string {
	if def, ok := c.currentDef(layer); ok {
		return def.def.Name
	}
	return ""
}

func (c *Controller) currentDef(layer int) (compiledState, bool) {
	if c == nil || layer < 0 || layer >= len(c.layers) || c.current[layer] < 0 {
		return compiledState{}, false
	}
	return c.layers[layer].states[c.current[layer]], true
}

// Tick re-evaluates every layer. A change of state emits the old state's
// exit request before the new state's enter request.
func (c *Controller) Tick() {
	if c == nil {
		return
	}
	for li, layer := range c.layers {
		next := c.selectState(layer)
		prev := c.current[li]
		if next == prev {
			continue
		}
		if prev >= 0 {
			c.fire(layer.states[prev].def, -1)
		}
		c.current[li] = next
		if next >= 0 {
			c.fire(layer.states[next].def, 1)
		}
	}
}

func (c *Controller) selectState(layer compiledLayer) int {
	for i, s := range layer.states {
		ok := true
		for _, cond := range s.when {
			if !cond.holds(c.params[cond.param]) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

func (c *Controller) fire(def StateDef, sign int) {
	if c.emit == nil || (def.RootPosition == 0 && def.RootRotation == 0) {
		return
	}
	c.emit(RootMotionRequest{Position: sign * def.RootPosition, Rotation: sign * def.RootRotation, State: def.Name})
}

// DeltaPosition is the root motion displacement over dt for a body facing
// forward.
func (c *Controller) DeltaPosition(forward common.Vec3, dt float64) common.Vec3 {
	if c == nil {
		return common.Vec3{}
	}
	rate := 0.0
	for li := range c.layers {
		if def, ok := c.currentDef(li); ok {
			rate += def.def.RootSpeed
		}
	}
	return forward.Flat().Normalized().Scale(rate * c.params[c.speed] * dt)
}

// DeltaRotation is the root motion yaw change in degrees over dt.
func (c *Controller) DeltaRotation(dt float64) float64 {
	if c == nil {
		return 0
	}
	rate := 0.0
	for li := range c.layers {
		if def, ok := c.currentDef(li); ok {
			rate += def.def.TurnRate
		}
	}
	return rate * c.params[c.seeking] * dt
}
