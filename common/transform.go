package common

import "math"

// Transform is the pose of an agent or object. Forward is kept unit length
// on the XZ plane.
type Transform struct {
	Position Vec3
	Forward  Vec3
}

func NewTransform(pos Vec3, forward Vec3) Transform {
	t := Transform{Position: pos, Forward: Forward}
	t.LookDirection(forward)
	return t
}

// Yaw returns the heading in degrees, 0 facing +Z, 90 facing +X.
func (t *Transform) Yaw() float64 {
	return Rad2Deg(math.Atan2(t.Forward.X, t.Forward.Z))
}

// SetYaw faces the transform along the given heading in degrees.
func (t *Transform) SetYaw(deg float64) {
	r := Deg2Rad(deg)
	t.Forward = Vec3{X: math.Sin(r), Z: math.Cos(r)}
}

// Rotate turns the transform by deg degrees; positive is clockwise from above.
func (t *Transform) Rotate(deg float64) {
	t.SetYaw(t.Yaw() + deg)
}

// LookDirection faces dir. A direction with no horizontal component leaves
// the heading unchanged.
func (t *Transform) LookDirection(dir Vec3) {
	f := dir.Flat().Normalized()
	if f.IsZero() {
		if t.Forward.IsZero() {
			t.Forward = Forward
		}
		return
	}
	t.Forward = f
}

// RotateTowards turns toward dir by at most maxDeg degrees.
func (t *Transform) RotateTowards(dir Vec3, maxDeg float64) {
	if dir.Flat().IsZero() {
		return
	}
	delta := SignedAngle(t.Forward, dir)
	if math.Abs(delta) <= maxDeg {
		t.LookDirection(dir)
		return
	}
	if delta > 0 {
		t.Rotate(maxDeg)
	} else {
		t.Rotate(-maxDeg)
	}
}

// SlerpTowards turns toward dir by the fraction t of the remaining angle,
// clamped to [0, 1].
func (t *Transform) SlerpTowards(dir Vec3, frac float64) {
	if dir.Flat().IsZero() {
		return
	}
	delta := SignedAngle(t.Forward, dir)
	t.Rotate(delta * Clamp01(frac))
}
