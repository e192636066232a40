package tessellate

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triangulate splits a planar polygon into triangles by ear clipping and
// returns index triples into pts, wound like pts. Polygons whose normal is
// zero fall back to a fan.
func triangulate(pts []v3.Vec, normal v3.Vec) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}
	if n == 3 || normal.Length() == 0 {
		return fan(n)
	}

	// Project onto the coordinate plane most parallel to the polygon.
	ax, ay := projectionAxes(normal)
	p2 := make([][2]float64, n)
	for i, p := range pts {
		c := [3]float64{p.X, p.Y, p.Z}
		p2[i] = [2]float64{c[ax], c[ay]}
	}
	sign := 1.0
	if area2(p2) < 0 {
		sign = -1
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]int
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if !isEar(p2, idx, a, b, c, sign) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}
	if len(idx) == 3 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
		return tris
	}
	// Numerically stuck: fan the remainder.
	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris
}

func fan(n int) [][3]int {
	tris := make([][3]int, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// projectionAxes returns the two coordinates kept when dropping the axis
// along which normal is largest.
func projectionAxes(normal v3.Vec) (int, int) {
	x, y, z := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	switch {
	case z >= x && z >= y:
		return 0, 1
	case x >= y:
		return 1, 2
	default:
		return 2, 0
	}
}

func area2(p [][2]float64) float64 {
	var s float64
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		s += a[0]*b[1] - a[1]*b[0]
	}
	return s
}

func turn(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func isEar(p [][2]float64, idx []int, a, b, c int, sign float64) bool {
	if sign*turn(p[a], p[b], p[c]) <= 0 {
		return false
	}
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		if inTriangle(p[i], p[a], p[b], p[c], sign) {
			return false
		}
	}
	return true
}

func inTriangle(q, a, b, c [2]float64, sign float64) bool {
	return sign*turn(a, b, q) >= 0 && sign*turn(b, c, q) >= 0 && sign*turn(c, a, q) >= 0
}
