package ai

import (
	"fmt"
	"strings"
)

// StateKind identifies a behavioural state.
type StateKind int

const (
	KindNone StateKind = iota
	KindIdle
	KindAlerted
	KindPatrol
	KindAttack
	KindFeeding
	KindPursuit
	KindDead
)

var stateKindNames = map[StateKind]string{
	KindNone:    "none",
	KindIdle:    "idle",
	KindAlerted: "alerted",
	KindPatrol:  "patrol",
	KindAttack:  "attack",
	KindFeeding: "feeding",
	KindPursuit: "pursuit",
	KindDead:    "dead",
}

func (k StateKind) String() string {
	if name, ok := stateKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// ParseStateKind resolves a lower-case state name as used in prefabs and
// scripts.
func ParseStateKind(name string) (StateKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range stateKindNames {
		if n == name {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("ai: unknown state %q", name)
}

// TargetKind classifies what an agent is reacting to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetWaypoint
	TargetVisualPlayer
	TargetVisualLight
	TargetVisualFood
	TargetAudio
)

func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "none"
	case TargetWaypoint:
		return "waypoint"
	case TargetVisualPlayer:
		return "visual_player"
	case TargetVisualLight:
		return "visual_light"
	case TargetVisualFood:
		return "visual_food"
	case TargetAudio:
		return "audio"
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// TriggerEvent is the phase of a sensor volume overlap.
type TriggerEvent int

const (
	TriggerEnter TriggerEvent = iota
	TriggerStay
	TriggerExit
)

func (e TriggerEvent) String() string {
	switch e {
	case TriggerEnter:
		return "enter"
	case TriggerStay:
		return "stay"
	case TriggerExit:
		return "exit"
	}
	return fmt.Sprintf("TriggerEvent(%d)", int(e))
}

// Category is the tag-like classification of a sensed object.
type Category int

const (
	CategoryNone Category = iota
	CategoryPlayer
	CategoryLight
	CategorySound
	CategoryFood
	// CategoryTarget marks trigger-only volumes that perception ignores.
	CategoryTarget
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryPlayer:
		return "player"
	case CategoryLight:
		return "light"
	case CategorySound:
		return "sound"
	case CategoryFood:
		return "food"
	case CategoryTarget:
		return "target"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Layer is a collision layer bit mask used to filter ray and volume queries.
type Layer uint32

const (
	LayerDefault Layer = 1 << iota
	LayerBodyPart
	LayerPlayer
	LayerAggravator
	LayerTrigger

	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// Has reports whether any bit of o is set in l.
func (l Layer) Has(o Layer) bool {
	return l&o != 0
}
