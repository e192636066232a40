package floor

import (
	"math"
	"sort"

	"github.com/chazu/storey/pkg/mesh"
)

// DefaultHeightTolerance is the distance under which a face center counts
// as sitting at a target height. It equals the half-width of a 4-decimal
// rounding bucket.
const DefaultHeightTolerance = 5e-5

// Targets are the expected face center heights, ascending.
type Targets struct {
	Slab []float64
	Wall []float64
}

// Classification partitions the faces of a mesh by height.
type Classification struct {
	Slabs     []mesh.FaceID
	Walls     []mesh.FaceID
	Unmatched []mesh.FaceID // faces at neither height, left untouched
}

// StoryBase is the height at the bottom of story idx's slab.
func StoryBase(p Params, start float64, idx int) float64 {
	return start + float64(idx)*p.FloorHeight + float64(idx)*p.SlabThickness
}

// TargetHeights returns the slab and wall center heights of every story.
func TargetHeights(p Params, start float64) Targets {
	var t Targets
	for idx := 0; idx < p.FloorCount; idx++ {
		h := StoryBase(p, start, idx)
		t.Slab = append(t.Slab, h+p.SlabThickness/2)
		t.Wall = append(t.Wall, h+p.FloorHeight/2+p.SlabThickness)
	}
	sort.Float64s(t.Slab)
	sort.Float64s(t.Wall)
	return t
}

// Classify assigns every face whose center Z lies within tol of a slab
// target to Slabs, otherwise within tol of a wall target to Walls. Since
// only heights matter, running it again on the same mesh yields the same
// sets. A non-positive tol selects DefaultHeightTolerance.
func Classify(m mesh.Adapter, p Params, start, tol float64) (Classification, error) {
	if tol <= 0 {
		tol = DefaultHeightTolerance
	}
	t := TargetHeights(p, start)

	var c Classification
	for _, f := range m.Faces() {
		center, err := m.FaceCenter(f)
		if err != nil {
			return c, err
		}
		switch {
		case matchHeight(t.Slab, center.Z, tol):
			c.Slabs = append(c.Slabs, f)
		case matchHeight(t.Wall, center.Z, tol):
			c.Walls = append(c.Walls, f)
		default:
			c.Unmatched = append(c.Unmatched, f)
		}
	}
	return c, nil
}

// matchHeight reports whether some entry of the ascending slice sorted
// lies strictly within tol of z.
func matchHeight(sorted []float64, z, tol float64) bool {
	i := sort.SearchFloat64s(sorted, z-tol)
	for ; i < len(sorted) && sorted[i] <= z+tol; i++ {
		if math.Abs(sorted[i]-z) < tol {
			return true
		}
	}
	return false
}
