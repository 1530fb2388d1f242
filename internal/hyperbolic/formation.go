package hyperbolic

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// RingRadius is the radius of the ring formation's circle.
const RingRadius = 0.5

// Ring places n agents evenly around a radius-0.5 circle in the xy-plane,
// at the given phase offsets in degrees (one per agent, same length as n).
func Ring(phaseOffsetsDegrees []float64) []Point {
	points := make([]Point, len(phaseOffsetsDegrees))
	for i, deg := range phaseOffsetsDegrees {
		rad := deg * math.Pi / 180
		points[i] = Point{RingRadius * math.Cos(rad), RingRadius * math.Sin(rad), 0}
	}
	return points
}

// Dispersed distributes n points over a Fibonacci sphere of the given
// radius, maximizing pairwise angular separation.
func Dispersed(n int, radius float64) []Point {
	points := make([]Point, n)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - (float64(i)/float64(max(n-1, 1)))*2
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := goldenAngle * float64(i)
		points[i] = Point{
			radius * r * math.Cos(theta),
			radius * y,
			radius * r * math.Sin(theta),
		}
	}
	return points
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Convergent scatters n points in a small random cluster near the origin,
// each within maxRadius of center using cryptographically-seeded randomness.
func Convergent(n int, maxRadius float64) ([]Point, error) {
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		p, err := randomPointInBall(maxRadius)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}

func randomPointInBall(maxRadius float64) (Point, error) {
	for {
		var p Point
		var sumSquares float64
		for i := range p {
			f, err := randomUnitFloat()
			if err != nil {
				return Point{}, err
			}
			p[i] = (f*2 - 1) * maxRadius
			sumSquares += p[i] * p[i]
		}
		// Rejection sampling: keep only cube samples that lie inside the ball.
		if sumSquares <= maxRadius*maxRadius {
			return p, nil
		}
	}
}

// randomUnitFloat returns a cryptographically random float64 in [0, 1).
func randomUnitFloat() (float64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	// Use the top 53 bits for a uniform double in [0, 1), matching the
	// precision of float64's mantissa.
	v := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(v) / float64(1<<53), nil
}
