// Package world holds the simulation's spatial primitives. Coordinates are
// meters in a local tangent frame with Y as the vertical axis.
package world

import "math"

// Vec3 is a 3D vector in meters. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// DistanceTo returns the 3D distance between v and o.
func (v Vec3) DistanceTo(o Vec3) float64 { return o.Sub(v).Length() }

// Normalize returns the unit vector, or the zero vector for |v| == 0.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Lerp returns the linear interpolation from v to o at t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*t,
		v.Y + (o.Y-v.Y)*t,
		v.Z + (o.Z-v.Z)*t,
	}
}

// MoveToward returns the point reached by moving from v toward target by at
// most step meters, snapping to the target instead of overshooting it.
func (v Vec3) MoveToward(target Vec3, step float64) (Vec3, float64) {
	delta := target.Sub(v)
	dist := delta.Length()
	if step >= dist {
		return target, dist
	}
	return v.Add(delta.Normalize().Scale(step)), step
}
