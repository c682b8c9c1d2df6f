package physics

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/horde/ai"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/ecs"
)

var (
	ErrDuplicateCollider = errors.New("physics: collider already added")
	ErrUnknownCollider   = errors.New("physics: collider not found")
	ErrBadShape          = errors.New("physics: collider needs a radius or half extents")
)

const allCategories = ^uint(0)

// Collider describes one query shape. Shapes live on the ground plane: X
// maps to the cp X axis and Z to the cp Y axis; heights are carried only
// for reporting.
type Collider struct {
	ID       ecs.Entity
	Body     ecs.Entity
	Layer    ai.Layer
	Category ai.Category

	// Position is the reported position of the object. The shape center is
	// Position plus Offset, where Offset is in the object's local frame
	// (Z forward).
	Position common.Vec3
	Forward  common.Vec3
	Offset   common.Vec3

	// Radius makes a circle; otherwise HalfExtents makes a box.
	Radius      float64
	HalfExtents common.Vec3
	Static      bool

	// SoundRadius and LightDepth are reported on stimuli.
	SoundRadius float64
	LightDepth  float64
}

type collider struct {
	Collider
	shape *cp.Shape
	body  *cp.Body
}

// Space answers ray and volume queries against its colliders. It
// implements ai.RayCaster and ai.TriggerQuery.
type Space struct {
	space    *cp.Space
	byShape  map[*cp.Shape]*collider
	byEntity map[ecs.Entity]*collider
}

var (
	_ ai.RayCaster    = (*Space)(nil)
	_ ai.TriggerQuery = (*Space)(nil)
)

func NewSpace() *Space {
	return &Space{
		space:    cp.NewSpace(),
		byShape:  make(map[*cp.Shape]*collider),
		byEntity: make(map[ecs.Entity]*collider),
	}
}

func toCP(v common.Vec3) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Z}
}

func worldOffset(forward, offset common.Vec3) common.Vec3 {
	f := forward.Flat().Normalized()
	if f.IsZero() {
		f = common.Forward
	}
	right := common.Vec3{X: f.Z, Z: -f.X}
	return right.Scale(offset.X).Add(f.Scale(offset.Z))
}

// Add inserts c.
func (s *Space) Add(c Collider) error {
	if !c.ID.Valid() {
		return fmt.Errorf("physics: add: invalid id %s", c.ID)
	}
	if _, ok := s.byEntity[c.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCollider, c.ID)
	}
	if c.Radius <= 0 && (c.HalfExtents.X <= 0 || c.HalfExtents.Z <= 0) {
		return fmt.Errorf("%w: %s", ErrBadShape, c.ID)
	}

	center := c.Position.Add(worldOffset(c.Forward, c.Offset))
	col := &collider{Collider: c}
	if c.Static {
		col.body = s.space.StaticBody
		if c.Radius > 0 {
			col.shape = cp.NewCircle(col.body, c.Radius, toCP(center))
		} else {
			bb := cp.BB{
				L: center.X - c.HalfExtents.X,
				B: center.Z - c.HalfExtents.Z,
				R: center.X + c.HalfExtents.X,
				T: center.Z + c.HalfExtents.Z,
			}
			col.shape = cp.NewBox2(col.body, bb, 0)
		}
	} else {
		col.body = cp.NewKinematicBody()
		col.body.SetPosition(toCP(center))
		if c.Radius > 0 {
			col.shape = cp.NewCircle(col.body, c.Radius, cp.Vector{})
		} else {
			col.shape = cp.NewBox(col.body, c.HalfExtents.X*2, c.HalfExtents.Z*2, 0)
		}
		s.space.AddBody(col.body)
	}
	col.shape.SetFilter(cp.NewShapeFilter(0, uint(c.Layer), allCategories))
	s.space.AddShape(col.shape)

	s.byShape[col.shape] = col
	s.byEntity[c.ID] = col
	return nil
}

// Move repositions a movable collider.
func (s *Space) Move(id ecs.Entity, pos, forward common.Vec3) error {
	col, ok := s.byEntity[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollider, id)
	}
	if col.Static {
		return fmt.Errorf("physics: move static collider %s", id)
	}
	col.Position = pos
	if !forward.Flat().IsZero() {
		col.Forward = forward
	}
	col.body.SetPosition(toCP(pos.Add(worldOffset(col.Forward, col.Offset))))
	s.space.ReindexShapesForBody(col.body)
	return nil
}

// Remove deletes a collider.
func (s *Space) Remove(id ecs.Entity) error {
	col, ok := s.byEntity[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollider, id)
	}
	s.space.RemoveShape(col.shape)
	if !col.Static {
		s.space.RemoveBody(col.body)
	}
	delete(s.byShape, col.shape)
	delete(s.byEntity, id)
	return nil
}

// Collider returns the description of id.
func (s *Space) Collider(id ecs.Entity) (Collider, bool) {
	col, ok := s.byEntity[id]
	if !ok {
		return Collider{}, false
	}
	return col.Collider, true
}

// Len returns the number of colliders.
func (s *Space) Len() int { return len(s.byEntity) }

// CastRay returns every collider on mask crossed by the ray, measured on
// the ground plane.
func (s *Space) CastRay(origin, direction common.Vec3, maxDistance float64, mask ai.Layer) []ai.Hit {
	dir := direction.Flat().Normalized()
	if dir.IsZero() || maxDistance <= 0 {
		return nil
	}
	end := origin.Add(dir.Scale(maxDistance))
	filter := cp.NewShapeFilter(0, allCategories, uint(mask))

	var hits []ai.Hit
	seen := make(map[ecs.Entity]int)
	s.space.SegmentQuery(toCP(origin), toCP(end), 0, filter, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
		col, ok := s.byShape[shape]
		if !ok {
			return
		}
		d := alpha * maxDistance
		if i, dup := seen[col.ID]; dup {
			if d < hits[i].Distance {
				hits[i].Distance = d
			}
			return
		}
		seen[col.ID] = len(hits)
		hits = append(hits, ai.Hit{
			Distance: d,
			Point:    common.Vec3{X: point.X, Y: origin.Y, Z: point.Y},
			Object:   col.ID,
			Body:     col.Body,
			Layer:    col.Layer,
		})
	}, nil)
	return hits
}

// Overlaps returns stimuli for colliders on mask within radius of center,
// ordered by id.
func (s *Space) Overlaps(center common.Vec3, radius float64, mask ai.Layer) []ai.Stimulus {
	if radius < 0 {
		return nil
	}
	filter := cp.NewShapeFilter(0, allCategories, uint(mask))
	seen := make(map[ecs.Entity]bool)
	var out []ai.Stimulus
	s.space.PointQuery(toCP(center), radius, filter, func(shape *cp.Shape, point cp.Vector, distance float64, gradient cp.Vector, data interface{}) {
		col, ok := s.byShape[shape]
		if !ok || seen[col.ID] {
			return
		}
		seen[col.ID] = true
		out = append(out, ai.Stimulus{
			ID:       col.ID,
			Category: col.Category,
			Position: col.Position,
			Radius:   col.SoundRadius,
			Depth:    col.LightDepth,
		})
	}, nil)
	slices.SortFunc(out, func(a, b ai.Stimulus) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
