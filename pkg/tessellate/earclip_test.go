package tessellate

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func triArea(pts []v3.Vec, tris [][3]int) float64 {
	var a float64
	for _, t := range tris {
		a += pts[t[1]].Sub(pts[t[0]]).Cross(pts[t[2]].Sub(pts[t[0]])).Length() / 2
	}
	return a
}

func TestTriangulate(t *testing.T) {
	up := v3.Vec{Z: 1}
	tests := []struct {
		name   string
		pts    []v3.Vec
		normal v3.Vec
		tris   int
		area   float64
	}{
		{
			name:   "triangle",
			pts:    []v3.Vec{{X: 0}, {X: 1}, {Y: 1}},
			normal: up,
			tris:   1,
			area:   0.5,
		},
		{
			name:   "square",
			pts:    []v3.Vec{{X: 0}, {X: 2}, {X: 2, Y: 2}, {Y: 2}},
			normal: up,
			tris:   2,
			area:   4,
		},
		{
			name: "L shape",
			pts: []v3.Vec{
				{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 2},
				{X: 2, Y: 2}, {X: 2, Y: 6}, {X: 0, Y: 6},
			},
			normal: up,
			tris:   4,
			area:   20,
		},
		{
			name: "L shape clockwise",
			pts: []v3.Vec{
				{X: 0, Y: 6}, {X: 2, Y: 6}, {X: 2, Y: 2},
				{X: 6, Y: 2}, {X: 6, Y: 0}, {X: 0, Y: 0},
			},
			normal: v3.Vec{Z: -1},
			tris:   4,
			area:   20,
		},
		{
			name: "vertical U",
			pts: []v3.Vec{
				{X: 0, Z: 0}, {X: 3, Z: 0}, {X: 3, Z: 3}, {X: 2, Z: 3},
				{X: 2, Z: 1}, {X: 1, Z: 1}, {X: 1, Z: 3}, {X: 0, Z: 3},
			},
			normal: v3.Vec{Y: -1},
			tris:   6,
			area:   7,
		},
		{
			name:   "degenerate",
			pts:    []v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}},
			normal: v3.Vec{},
			tris:   2,
			area:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := triangulate(tt.pts, tt.normal)
			if len(tris) != tt.tris {
				t.Fatalf("got %d triangles, want %d", len(tris), tt.tris)
			}
			if got := triArea(tt.pts, tris); math.Abs(got-tt.area) > 1e-9 {
				t.Errorf("area = %g, want %g", got, tt.area)
			}
			for _, tri := range tris {
				if tt.normal.Length() == 0 {
					break
				}
				a, b, c := tt.pts[tri[0]], tt.pts[tri[1]], tt.pts[tri[2]]
				if b.Sub(a).Cross(c.Sub(a)).Dot(tt.normal) <= 0 {
					t.Errorf("triangle %v winds against the normal", tri)
				}
			}
		})
	}

	if tris := triangulate([]v3.Vec{{}, {X: 1}}, up); tris != nil {
		t.Errorf("two points gave %v", tris)
	}
}
