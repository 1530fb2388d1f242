// Package hyperbolic implements the Poincaré-ball hyperbolic geometry core
// (spec §4.6): distance, Möbius addition/scaling, weighted centroid,
// formation generators, and the harmonic wall cost used by the swarm model.
//
// No repository in the retrieved corpus vendors a hyperbolic-geometry or
// general vector-math library (see DESIGN.md), so this package is built on
// stdlib math only — each operation is a small pure function in the style
// of the teacher's escalation/pressure.go, one formula per exported
// function.
package hyperbolic

import "math"

// Dimensions is the fixed width of a position vector in this model.
const Dimensions = 3

// Point is a position in (or near) the open unit ball.
type Point [Dimensions]float64

// ClampNorm is the maximum norm a position may have after clampToBall.
const ClampNorm = 0.99

// degenerateThreshold guards divisions that would otherwise blow up near
// the ball boundary or at a zero vector.
const degenerateThreshold = 1e-10

// Norm returns the Euclidean norm of p.
func Norm(p Point) float64 {
	var sumSquares float64
	for _, c := range p {
		sumSquares += c * c
	}
	return math.Sqrt(sumSquares)
}

// IsValid reports whether every component of p is finite (not NaN or
// infinite). Any invalid component invalidates the whole position.
func IsValid(p Point) bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func sub(a, b Point) Point {
	var out Point
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

func scale(p Point, s float64) Point {
	var out Point
	for i := range out {
		out[i] = p[i] * s
	}
	return out
}

func add(a, b Point) Point {
	var out Point
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}

func dot(a, b Point) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// HyperbolicDistance computes the Poincaré-ball distance between u and v.
// Positions with norm >= 1 are outside the open ball and cause this to
// return +Inf.
func HyperbolicDistance(u, v Point) float64 {
	normU := Norm(u)
	normV := Norm(v)
	if normU >= 1 || normV >= 1 {
		return math.Inf(1)
	}

	diff := sub(u, v)
	diffNormSq := dot(diff, diff)
	denom := (1 - normU*normU) * (1 - normV*normV)
	if denom <= 0 {
		return math.Inf(1)
	}

	arg := 1 + 2*diffNormSq/denom
	return math.Acosh(arg)
}

// MobiusAdd computes the Möbius sum u (+) v in the Poincaré-ball model. A
// degenerate denominator (< 1e-10) returns the origin rather than dividing
// by a near-zero value.
func MobiusAdd(u, v Point) Point {
	uu := dot(u, u)
	vv := dot(v, v)
	uv := dot(u, v)

	denom := 1 + 2*uv + uu*vv
	if math.Abs(denom) < degenerateThreshold {
		return Point{}
	}

	coeffU := 1 + 2*uv + vv
	coeffV := 1 - uu
	numerator := add(scale(u, coeffU), scale(v, coeffV))
	return scale(numerator, 1/denom)
}

// MobiusScale computes t (x) v: tanh(t * atanh(||v||)) * v/||v||. A
// degenerate norm (< 1e-10) returns the origin.
func MobiusScale(t float64, v Point) Point {
	norm := Norm(v)
	if norm < degenerateThreshold {
		return Point{}
	}
	magnitude := math.Tanh(t * math.Atanh(norm))
	return scale(v, magnitude/norm)
}

// HyperbolicCentroid folds points (weighted by weights) into a single
// Möbius-weighted centroid: each point is Möbius-scaled by its normalized
// weight, then the results are Möbius-summed in order. An empty set of
// points returns the origin.
func HyperbolicCentroid(points []Point, weights []float64) Point {
	if len(points) == 0 {
		return Point{}
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		totalWeight = float64(len(points))
		weights = make([]float64, len(points))
		for i := range weights {
			weights[i] = 1
		}
	}

	centroid := Point{}
	for i, p := range points {
		w := weights[i] / totalWeight
		centroid = MobiusAdd(centroid, MobiusScale(w, p))
	}
	return centroid
}

// ClampToBall rescales p so its norm does not exceed ClampNorm. Positions
// already within bound are returned unchanged. Any NaN/non-finite
// component invalidates the position and ClampToBall returns the origin.
func ClampToBall(p Point) Point {
	if !IsValid(p) {
		return Point{}
	}
	norm := Norm(p)
	if norm <= ClampNorm || norm == 0 {
		return p
	}
	return scale(p, ClampNorm/norm)
}

// HarmonicWallCost computes exp(d + 2*phaseDev), the cost of approaching
// the boundary of the ball while out of phase alignment.
func HarmonicWallCost(distance, phaseDeviation float64) float64 {
	return math.Exp(distance + 2*phaseDeviation)
}
