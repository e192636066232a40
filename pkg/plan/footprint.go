package plan

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Footprint is a closed floorplan polygon in the XY plane. The last point
// connects back to the first.
type Footprint []v2.Vec

// Edge returns the i-th edge, from point i to point i+1.
func (fp Footprint) Edge(i int) (v2.Vec, v2.Vec) {
	return fp[i], fp[(i+1)%len(fp)]
}

// SignedArea is positive for counter-clockwise footprints.
func (fp Footprint) SignedArea() float64 {
	var sum float64
	for i := range fp {
		a, b := fp.Edge(i)
		sum += cross(a, b)
	}
	return sum / 2
}

// Area returns the unsigned area.
func (fp Footprint) Area() float64 {
	return math.Abs(fp.SignedArea())
}

// IsClockwise reports whether the points wind clockwise.
func (fp Footprint) IsClockwise() bool {
	return fp.SignedArea() < 0
}

// Perimeter returns the length of the closed outline.
func (fp Footprint) Perimeter() float64 {
	var sum float64
	for i := range fp {
		a, b := fp.Edge(i)
		sum += b.Sub(a).Length()
	}
	return sum
}

// ShortestEdge returns the length of the shortest non-zero edge, or 0 if
// every edge has zero length.
func (fp Footprint) ShortestEdge() float64 {
	shortest := 0.0
	for i := range fp {
		a, b := fp.Edge(i)
		l := b.Sub(a).Length()
		if l == 0 {
			continue
		}
		if shortest == 0 || l < shortest {
			shortest = l
		}
	}
	return shortest
}

// RepeatedPoints returns the indices of points equal to their successor.
func (fp Footprint) RepeatedPoints() []int {
	var out []int
	for i := range fp {
		a, b := fp.Edge(i)
		if a == b {
			out = append(out, i)
		}
	}
	return out
}

// Clean drops points equal to their successor.
func (fp Footprint) Clean() Footprint {
	out := make(Footprint, 0, len(fp))
	for i := range fp {
		a, b := fp.Edge(i)
		if a != b {
			out = append(out, a)
		}
	}
	return out
}

// SelfIntersects reports whether two non-adjacent edges cross or touch.
func (fp Footprint) SelfIntersects() bool {
	n := len(fp)
	for i := 0; i < n; i++ {
		a, b := fp.Edge(i)
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			c, d := fp.Edge(j)
			if segmentsIntersect(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

// Points3 lifts the footprint to height z, counter-clockwise when seen
// from above.
func (fp Footprint) Points3(z float64) []v3.Vec {
	out := make([]v3.Vec, len(fp))
	for i, p := range fp {
		out[i] = v3.Vec{X: p.X, Y: p.Y, Z: z}
	}
	if fp.IsClockwise() {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// orient is the sign of the turn a->b->c.
func orient(a, b, c v2.Vec) int {
	v := cross(b.Sub(a), c.Sub(a))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(a, b, p v2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

func segmentsIntersect(a, b, c, d v2.Vec) bool {
	o1, o2 := orient(a, b, c), orient(a, b, d)
	o3, o4 := orient(c, d, a), orient(c, d, b)
	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(a, b, c):
		return true
	case o2 == 0 && onSegment(a, b, d):
		return true
	case o3 == 0 && onSegment(c, d, a):
		return true
	case o4 == 0 && onSegment(c, d, b):
		return true
	}
	return false
}
