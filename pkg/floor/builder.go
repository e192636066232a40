package floor

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
)

// Options tune a build beyond its Params.
type Options struct {
	// StartHeight picks the selected face that sets the start height when
	// no edges are given.
	StartHeight StartHeightRule
	// Tolerance is the height matching tolerance used by Classify.
	// Zero selects DefaultHeightTolerance.
	Tolerance float64
}

// Result is what a build produced.
type Result struct {
	FaceMap     FaceMap
	StartHeight float64
	Steps       int               // extrusion steps performed
	Cap         mesh.CreateResult // face or wire closing the top loop
	Unmatched   []mesh.FaceID     // faces matching neither slab nor wall height
	Deleted     []mesh.FaceID     // ground faces removed after extrusion
}

// Build generates a stack of p.FloorCount stories on m from edges, or from
// the selected faces when edges is empty, and tags the result.
//
// Steps: validate params, resolve the boundary, extrude, classify, inset
// the slabs, recalculate normals, delete ground faces. The first failing
// step aborts the build and leaves m as that step left it.
func Build(m mesh.Adapter, edges []mesh.EdgeID, p Params, opts Options) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b, err := ResolveBoundary(m, edges, opts.StartHeight)
	if err != nil {
		return nil, err
	}

	ex, err := ExtrudeStories(m, b.Edges, p)
	if err != nil {
		return nil, err
	}

	cls, err := Classify(m, p, b.StartHeight, opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("floor: classify: %w", err)
	}

	slabs, err := InsetBuffer(m, cls.Slabs, p.SlabOutset)
	if err != nil {
		return nil, err
	}

	if err := m.RecalcNormals(m.Faces()); err != nil {
		return nil, fmt.Errorf("floor: recalculate normals: %w", err)
	}

	if len(b.GroundFaces) > 0 {
		if err := m.Delete(b.GroundFaces, mesh.DeleteFaces); err != nil {
			return nil, fmt.Errorf("floor: delete ground faces: %w", err)
		}
	}

	deleted := make(map[mesh.FaceID]bool, len(b.GroundFaces))
	for _, f := range b.GroundFaces {
		deleted[f] = true
	}
	fm := FaceMap{}
	fm.Add(Slabs, without(slabs, deleted)...)
	fm.Add(Walls, without(cls.Walls, deleted)...)

	return &Result{
		FaceMap:     fm,
		StartHeight: b.StartHeight,
		Steps:       len(ex.Layers),
		Cap:         ex.Cap,
		Unmatched:   without(cls.Unmatched, deleted),
		Deleted:     b.GroundFaces,
	}, nil
}

func without(faces []mesh.FaceID, drop map[mesh.FaceID]bool) []mesh.FaceID {
	if len(drop) == 0 {
		return faces
	}
	out := make([]mesh.FaceID, 0, len(faces))
	for _, f := range faces {
		if !drop[f] {
			out = append(out, f)
		}
	}
	return out
}
