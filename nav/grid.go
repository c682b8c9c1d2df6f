package nav

import (
	"errors"
	"math"

	"github.com/milk9111/horde/common"
)

var ErrBadGrid = errors.New("nav: grid needs positive size and dimensions")

// Cell addresses one grid square on the ground plane.
type Cell struct {
	X int
	Z int
}

// Link is an off-grid connection, such as a jump between ledges, traversed
// by interpolation instead of walking.
type Link struct {
	Name          string
	Start         common.Vec3
	End           common.Vec3
	Duration      float64
	Height        float64
	Bidirectional bool
}

// Grid is a walkability grid over the XZ plane. Blocking cells after a path
// was computed marks that path stale.
type Grid struct {
	origin   common.Vec3
	cellSize float64
	width    int
	depth    int
	blocked  []bool
	links    []Link
	version  uint64
}

// NewGrid covers width x depth cells of cellSize starting at origin.
func NewGrid(origin common.Vec3, cellSize float64, width, depth int) (*Grid, error) {
	if cellSize <= 0 || width <= 0 || depth <= 0 {
		return nil, ErrBadGrid
	}
	return &Grid{
		origin:   origin,
		cellSize: cellSize,
		width:    width,
		depth:    depth,
		blocked:  make([]bool, width*depth),
	}, nil
}

func (g *Grid) CellSize() float64 { return g.cellSize }
func (g *Grid) Width() int        { return g.width }
func (g *Grid) Depth() int        { return g.depth }

// Version changes every time walkability or links change.
func (g *Grid) Version() uint64 {
	if g == nil {
		return 0
	}
	return g.version
}

func (g *Grid) inBounds(c Cell) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < g.width && c.Z < g.depth
}

func (g *Grid) index(c Cell) int {
	return c.Z*g.width + c.X
}

// CellOf returns the cell containing pos and whether it is on the grid.
func (g *Grid) CellOf(pos common.Vec3) (Cell, bool) {
	c := Cell{
		X: int(math.Floor((pos.X - g.origin.X) / g.cellSize)),
		Z: int(math.Floor((pos.Z - g.origin.Z) / g.cellSize)),
	}
	return c, g.inBounds(c)
}

// clampCell returns the on-grid cell nearest to pos.
func (g *Grid) clampCell(pos common.Vec3) Cell {
	c, _ := g.CellOf(pos)
	c.X = max(0, min(g.width-1, c.X))
	c.Z = max(0, min(g.depth-1, c.Z))
	return c
}

// Center returns the world position of the middle of c at the grid height.
func (g *Grid) Center(c Cell) common.Vec3 {
	half := g.cellSize * 0.5
	return common.Vec3{
		X: g.origin.X + float64(c.X)*g.cellSize + half,
		Y: g.origin.Y,
		Z: g.origin.Z + float64(c.Z)*g.cellSize + half,
	}
}

// Blocked reports whether c is unwalkable. Off-grid cells are blocked.
func (g *Grid) Blocked(c Cell) bool {
	if !g.inBounds(c) {
		return true
	}
	return g.blocked[g.index(c)]
}

// SetBlocked changes the walkability of c.
func (g *Grid) SetBlocked(c Cell, blocked bool) {
	if !g.inBounds(c) {
		return
	}
	idx := g.index(c)
	if g.blocked[idx] == blocked {
		return
	}
	g.blocked[idx] = blocked
	g.version++
}

// BlockRect blocks every cell overlapping the axis aligned box spanned by
// min and max.
func (g *Grid) BlockRect(lo, hi common.Vec3) {
	a := g.clampCell(common.Vec3{X: math.Min(lo.X, hi.X), Z: math.Min(lo.Z, hi.Z)})
	b := g.clampCell(common.Vec3{X: math.Max(lo.X, hi.X) - 0.001, Z: math.Max(lo.Z, hi.Z) - 0.001})
	for z := a.Z; z <= b.Z; z++ {
		for x := a.X; x <= b.X; x++ {
			g.SetBlocked(Cell{X: x, Z: z}, true)
		}
	}
}

// AddLink registers an off-grid connection.
func (g *Grid) AddLink(l Link) {
	if l.Duration <= 0 {
		l.Duration = 0.5
	}
	g.links = append(g.links, l)
	g.version++
}

// Links returns the registered links.
func (g *Grid) Links() []Link {
	return append([]Link(nil), g.links...)
}
