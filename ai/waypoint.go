package ai

import (
	"math/rand/v2"
	"strconv"

	"github.com/milk9111/horde/common"
)

// Waypoint is a named patrol point.
type Waypoint struct {
	Name     string
	Position common.Vec3
}

// Cursor is a traversal position in a Network. The zero value is unset.
type Cursor struct {
	// pos is index+1 so that zero means unset
	pos int
}

func NewCursor() Cursor {
	return Cursor{}
}

// Index returns the current index, -1 when unset.
func (c *Cursor) Index() int {
	return c.pos - 1
}

// Reset unsets the cursor.
func (c *Cursor) Reset() {
	c.pos = 0
}

func (c *Cursor) set(i int) {
	c.pos = i + 1
}

// Network is an ordered set of patrol points. Traversal state normally lives
// on each agent's Cursor; when Shared is set, agents advance the network's
// own cursor instead so it can be displayed. Networks are advanced from the
// simulation goroutine only.
type Network struct {
	Name      string
	Waypoints []*Waypoint
	Random    bool
	Shared    bool

	cursor Cursor
}

// NewNetwork builds a network from positions, naming points by index.
func NewNetwork(name string, random bool, positions ...common.Vec3) *Network {
	n := &Network{Name: name, Random: random}
	for i, p := range positions {
		n.Waypoints = append(n.Waypoints, &Waypoint{Name: name + "_" + strconv.Itoa(i), Position: p})
	}
	return n
}

// Len returns the number of waypoints.
func (n *Network) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Waypoints)
}

// Cursor returns the network-owned cursor used in Shared mode.
func (n *Network) Cursor() *Cursor {
	if n == nil {
		return nil
	}
	return &n.cursor
}

// Advance resolves the waypoint under c. An unset cursor is placed at a
// random or the first index without advancing; otherwise increment moves to
// a different random index, or the next index wrapping to zero.
func (n *Network) Advance(c *Cursor, increment bool, rng *rand.Rand) (common.Vec3, error) {
	if n == nil {
		return common.Vec3{}, ErrNoNetwork
	}
	count := len(n.Waypoints)
	if count == 0 {
		return common.Vec3{}, ErrEmptyNetwork
	}
	if idx := c.Index(); idx < 0 || idx >= count {
		if n.Random && rng != nil {
			c.set(rng.IntN(count))
		} else {
			c.set(0)
		}
	} else if increment {
		c.set(n.next(idx, rng))
	}
	wp := n.Waypoints[c.Index()]
	if wp == nil {
		return common.Vec3{}, ErrNilWaypoint
	}
	return wp.Position, nil
}

func (n *Network) next(current int, rng *rand.Rand) int {
	count := len(n.Waypoints)
	if n.Random && count > 1 && rng != nil {
		// draw from the other count-1 slots so the result never repeats
		i := rng.IntN(count - 1)
		if i >= current {
			i++
		}
		return i
	}
	if current == count-1 {
		return 0
	}
	return current + 1
}
