package common

import "math"

// Vec3 is a world-space vector. Y is up; agents move on the XZ plane.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

var (
	Zero    = Vec3{}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns the unit vector, or the zero vector when v is too short
// to have a direction.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

func (v Vec3) IsZero() bool {
	return math.Abs(v.X) < Epsilon && math.Abs(v.Y) < Epsilon && math.Abs(v.Z) < Epsilon
}

// ApproxEqual compares component-wise within Epsilon.
func (v Vec3) ApproxEqual(o Vec3) bool {
	return v.Sub(o).IsZero()
}

func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

func LerpVec(a, b Vec3, t float64) Vec3 {
	return Vec3{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t), Z: Lerp(a.Z, b.Z, t)}
}

// Angle returns the unsigned angle between a and b in degrees.
func Angle(a, b Vec3) float64 {
	la := a.Len()
	lb := b.Len()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	cos := Clamp(a.Dot(b)/(la*lb), -1, 1)
	return Rad2Deg(math.Acos(cos))
}

// SignedAngle returns the angle in degrees from a to b measured on the XZ
// plane. Positive angles turn clockwise when viewed from above (to the right).
func SignedAngle(a, b Vec3) float64 {
	fa := a.Flat()
	fb := b.Flat()
	angle := Angle(fa, fb)
	if fa.Cross(fb).Y < 0 {
		angle = -angle
	}
	return angle
}
