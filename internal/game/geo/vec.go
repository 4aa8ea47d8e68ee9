// Package geo provides the 3D vector math used for entity positions and
// movement integration.
package geo

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean magnitude of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// StepToward returns v advanced toward target by at most step units.
// When the remaining distance is less than or equal to step, the target
// itself is returned.
//
// Precondition: step must be >= 0.
// Postcondition: Distance(result, target) <= Distance(v, target).
func (v Vec3) StepToward(target Vec3, step float64) Vec3 {
	delta := target.Sub(v)
	dist := delta.Length()
	if dist == 0 || dist <= step {
		return target
	}
	return v.Add(delta.Scale(step / dist))
}
