package floor

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Layer is the geometry added by one extrusion step.
type Layer struct {
	Offset float64
	Verts  []mesh.VertID
	Faces  []mesh.FaceID
}

// Extrusion is the outcome of ExtrudeStories.
type Extrusion struct {
	Layers []Layer       // 2*FloorCount entries, slab then floor per story
	Loop   []mesh.EdgeID // final extrusion front
	Cap    mesh.CreateResult
}

// Offsets returns the vertical offset of every extrusion step: slab
// thickness and floor height alternating, 2*FloorCount entries.
func Offsets(p Params) []float64 {
	if p.FloorCount <= 0 {
		return nil
	}
	out := make([]float64, 0, 2*p.FloorCount)
	for i := 0; i < p.FloorCount; i++ {
		out = append(out, p.SlabThickness, p.FloorHeight)
	}
	return out
}

// ExtrudeStories extrudes loop once per offset, lifting each new front by
// its offset, then caps the final front. A zero offset still extrudes but
// leaves the new vertices in place, which models a zero-thickness slab.
func ExtrudeStories(m mesh.Adapter, loop []mesh.EdgeID, p Params) (Extrusion, error) {
	var ex Extrusion
	for i, offset := range Offsets(p) {
		res, err := m.ExtrudeEdgesOnly(loop)
		if err != nil {
			return ex, fmt.Errorf("floor: extrude step %d: %w", i, err)
		}
		// Exact comparison: offsets are user parameters, either 0 or positive.
		if offset != 0 {
			if err := m.Translate(res.Verts, v3.Vec{Z: offset}); err != nil {
				return ex, fmt.Errorf("floor: translate step %d: %w", i, err)
			}
		}
		ex.Layers = append(ex.Layers, Layer{Offset: offset, Verts: res.Verts, Faces: res.Faces})
		loop = res.Edges
	}

	top, err := m.ContextualCreate(loop)
	if err != nil {
		return ex, fmt.Errorf("floor: cap: %w", err)
	}
	ex.Loop = loop
	ex.Cap = top
	return ex, nil
}
