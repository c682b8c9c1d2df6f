package nav

import (
	"container/heap"
	"math"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
)

// Corner is one point of a path. A non-nil Link means the segment leading
// to this corner is crossed by traversing the link.
type Corner struct {
	Position common.Vec3
	Link     *Link
}

// Path is the result of a path query.
type Path struct {
	Status  ai.PathStatus
	Corners []Corner
	Version uint64
}

// Length is the polyline length from the first to the last corner.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Corners); i++ {
		total += common.Distance(p.Corners[i-1].Position, p.Corners[i].Position)
	}
	return total
}

type edge struct {
	to   int
	cost float64
	link *Link
}

// ComputePath finds a path from from to to. An unreachable or off-grid
// goal yields a partial path to the reachable cell nearest the goal; an
// off-grid or blocked start yields an invalid path.
func (g *Grid) ComputePath(from, to common.Vec3) Path {
	p := Path{Status: ai.PathInvalid, Version: g.Version()}
	start, ok := g.CellOf(from)
	if !ok || g.Blocked(start) {
		return p
	}
	goal, onGrid := g.CellOf(to)
	if !onGrid {
		goal = g.clampCell(to)
	}

	cells, steps, reached := g.astar(start, goal)
	p.Status = ai.PathComplete
	if !reached || !onGrid {
		p.Status = ai.PathPartial
	}

	p.Corners = append(p.Corners, Corner{Position: from})
	for i := 1; i < len(cells); i++ {
		c := Corner{Position: g.Center(cells[i]), Link: steps[i]}
		if c.Link != nil {
			entry, exit := g.linkEnds(c.Link, cells[i])
			// walk to the link entry first
			p.Corners = append(p.Corners, Corner{Position: entry})
			c.Position = exit
		}
		p.Corners = append(p.Corners, c)
	}
	if p.Status == ai.PathComplete {
		last := Corner{Position: to}
		if n := len(p.Corners); n > 1 && p.Corners[n-1].Link == nil {
			p.Corners[n-1] = last
		} else {
			p.Corners = append(p.Corners, last)
		}
	}
	p.Corners = simplify(p.Corners)
	return p
}

// linkEnds orients l so that it arrives in cell.
func (g *Grid) linkEnds(l *Link, arrive Cell) (entry, exit common.Vec3) {
	if c, _ := g.CellOf(l.End); c == arrive {
		return l.Start, l.End
	}
	return l.End, l.Start
}

// simplify drops corners that lie on the straight line between their
// neighbours. Link endpoints are kept.
func simplify(cs []Corner) []Corner {
	if len(cs) < 3 {
		return cs
	}
	out := []Corner{cs[0]}
	for i := 1; i < len(cs)-1; i++ {
		prev := out[len(out)-1]
		cur, next := cs[i], cs[i+1]
		if cur.Link == nil && next.Link == nil {
			a := cur.Position.Sub(prev.Position).Flat()
			b := next.Position.Sub(cur.Position).Flat()
			if math.Abs(a.Cross(b).Y) < 1e-9 && a.Dot(b) > 0 {
				continue
			}
		}
		out = append(out, cur)
	}
	return append(out, cs[len(cs)-1])
}

func (g *Grid) neighbours(idx int, out []edge) []edge {
	out = out[:0]
	c := Cell{X: idx % g.width, Z: idx / g.width}
	for _, d := range [4]Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := Cell{X: c.X + d.X, Z: c.Z + d.Z}
		if g.Blocked(n) {
			continue
		}
		out = append(out, edge{to: g.index(n), cost: 1})
	}
	for i := range g.links {
		l := &g.links[i]
		a, okA := g.CellOf(l.Start)
		b, okB := g.CellOf(l.End)
		if !okA || !okB || g.Blocked(a) || g.Blocked(b) {
			continue
		}
		cost := common.Distance(l.Start, l.End) / g.cellSize
		if g.index(a) == idx {
			out = append(out, edge{to: g.index(b), cost: cost, link: l})
		} else if l.Bidirectional && g.index(b) == idx {
			out = append(out, edge{to: g.index(a), cost: cost, link: l})
		}
	}
	return out
}

// astar returns the cells from start toward goal and the link used to
// enter each. When goal is unreachable the path ends at the explored cell
// closest to it.
func (g *Grid) astar(start, goal Cell) ([]Cell, []*Link, bool) {
	n := g.width * g.depth
	cameFrom := make([]int, n)
	via := make([]*Link, n)
	gScore := make([]float64, n)
	for i := range cameFrom {
		cameFrom[i] = -1
		gScore[i] = math.Inf(1)
	}
	startIdx := g.index(start)
	goalIdx := g.index(goal)
	gScore[startIdx] = 0

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &openItem{idx: startIdx, f: heuristic(start, goal)})

	best, bestH := startIdx, heuristic(start, goal)
	var scratch []edge
	reached := false
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem)
		if cur.g > gScore[cur.idx] {
			continue
		}
		if cur.idx == goalIdx {
			reached = true
			best = cur.idx
			break
		}
		cc := Cell{X: cur.idx % g.width, Z: cur.idx / g.width}
		if h := heuristic(cc, goal); h < bestH {
			best, bestH = cur.idx, h
		}
		scratch = g.neighbours(cur.idx, scratch)
		for _, e := range scratch {
			tentative := gScore[cur.idx] + e.cost
			if tentative < gScore[e.to] {
				cameFrom[e.to] = cur.idx
				via[e.to] = e.link
				gScore[e.to] = tentative
				nc := Cell{X: e.to % g.width, Z: e.to / g.width}
				heap.Push(open, &openItem{idx: e.to, f: tentative + heuristic(nc, goal), g: tentative})
			}
		}
	}

	var cells []Cell
	var links []*Link
	for cur := best; cur != -1; cur = cameFrom[cur] {
		cells = append(cells, Cell{X: cur % g.width, Z: cur / g.width})
		links = append(links, via[cur])
		if cur == startIdx {
			break
		}
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
		links[i], links[j] = links[j], links[i]
	}
	return cells, links, reached
}

func heuristic(a, b Cell) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Z-b.Z))
}

type openItem struct {
	idx   int
	f     float64
	g     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
