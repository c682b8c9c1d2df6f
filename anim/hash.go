package anim

import (
	"github.com/cespare/xxhash/v2"

	"github.com/milk9111/horde/ai"
)

// Hash returns the 64-bit hash identifying an animation state or parameter
// name.
func Hash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Param returns the parameter id for name.
func Param(name string) ai.ParamID {
	return ai.ParamID(Hash(name))
}

// Parameter and state names shared by the decision core and the graph.
const (
	ParamSpeed   = "Speed"
	ParamFeeding = "Feeding"
	ParamSeeking = "Seeking"
	ParamAttack  = "Attack"

	StateFeeding = "Feeding"
	LayerBase    = "Base"
	LayerEating  = "Cinematic"
	LayerAttack  = "Attack"
)
