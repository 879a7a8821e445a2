// Package vecmath provides the planar vector and angle helpers shared by the
// estimation and guidance packages. Vectors are gonum r2.Vec values; angles
// are radians measured counter-clockwise from +X.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is the planar vector type used throughout the module.
type Vec = r2.Vec

// Zero returns the zero vector.
func Zero() Vec { return Vec{} }

// Polar builds a vector of the given length pointing along angle.
func Polar(angle, length float64) Vec {
	return Vec{X: length * math.Cos(angle), Y: length * math.Sin(angle)}
}

// Rotate rotates v counter-clockwise about the origin by angle.
func Rotate(v Vec, angle float64) Vec {
	return r2.Rotate(v, angle, Vec{})
}

// Add returns a+b.
func Add(a, b Vec) Vec { return r2.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r2.Sub(a, b) }

// Scale returns f*v.
func Scale(f float64, v Vec) Vec { return r2.Scale(f, v) }

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float64 { return r2.Dot(a, b) }

// Wedge returns the 2D cross product a.X*b.Y - a.Y*b.X.
func Wedge(a, b Vec) float64 { return r2.Cross(a, b) }

// Length returns the Euclidean norm of v.
func Length(v Vec) float64 { return r2.Norm(v) }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float64 { return r2.Norm(r2.Sub(b, a)) }

// Angle returns the heading of v in (-π, π].
func Angle(v Vec) float64 { return math.Atan2(v.Y, v.X) }

// AngleTo returns the heading of the vector from `from` to `to`.
func AngleTo(from, to Vec) float64 { return Angle(r2.Sub(to, from)) }

// NormalizeAngle wraps a into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDiff returns the signed shortest rotation from a to b, in (-π, π].
func AngleDiff(a, b float64) float64 { return NormalizeAngle(b - a) }

// AngleBetween returns the unsigned angle between a and b in [0, π].
// Zero-length inputs yield 0.
func AngleBetween(a, b Vec) float64 {
	na, nb := r2.Norm(a), r2.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	c := r2.Dot(a, b) / (na * nb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// AngleAtDistance returns the beam angle that spans a linear swath at the
// given range: asin(swath/distance). Ranges inside the swath saturate at
// π/2 and non-positive ranges return π/2.
func AngleAtDistance(distance, swath float64) float64 {
	if distance <= 0 {
		return math.Pi / 2
	}
	s := swath / distance
	if s >= 1 {
		return math.Pi / 2
	}
	if s <= 0 {
		return 0
	}
	return math.Asin(s)
}

// IsFinite reports whether both components of v are finite.
func IsFinite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
