// Package tessellate realizes a building project: each building's footprint
// is laid on a fresh polygon mesh, extruded into stories by floor.Build, and
// the tagged faces are triangulated into one render mesh per category.
package tessellate

import (
	"fmt"

	"github.com/chazu/storey/pkg/floor"
	"github.com/chazu/storey/pkg/mesh"
	"github.com/chazu/storey/pkg/mesh/polymesh"
	"github.com/chazu/storey/pkg/plan"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Part name suffixes, one render mesh each.
const (
	PartSlabs = "slabs"
	PartWalls = "walls"
	PartOther = "other" // cap and any face matching neither height
)

// minFaceArea is the area below which a face is not rendered.
const minFaceArea = 1e-12

// Options tune generation.
type Options struct {
	StartHeight floor.StartHeightRule
	Tolerance   float64
}

// Model is one generated building.
type Model struct {
	Building *plan.Building
	Params   floor.Params
	Mesh     *polymesh.Mesh
	Result   *floor.Result
	Parts    []*Mesh // slabs, walls, other; empty parts are omitted
}

// Part returns the render mesh with the given suffix, or nil.
func (m *Model) Part(suffix string) *Mesh {
	want := m.Building.Name + "/" + suffix
	for _, p := range m.Parts {
		if p.PartName == want {
			return p
		}
	}
	return nil
}

// Generate builds every building of p in declaration order. It never
// mutates p. The first failing building aborts generation.
func Generate(p *plan.Project, opts Options) ([]*Model, error) {
	if p == nil {
		return nil, nil
	}
	models := make([]*Model, 0, len(p.Buildings))
	for _, b := range p.Buildings {
		m, err := GenerateBuilding(p, b, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: building %q: %w", b.Name, err)
		}
		models = append(models, m)
	}
	return models, nil
}

// GenerateBuilding builds one building of p.
func GenerateBuilding(p *plan.Project, b *plan.Building, opts Options) (*Model, error) {
	params := p.Params(b)
	pm := polymesh.New()

	fp := b.Footprint.Clean()
	var edges []mesh.EdgeID
	if b.FromSelection {
		f, err := pm.AddPolygon(fp.Points3(b.Elevation))
		if err != nil {
			return nil, fmt.Errorf("lay footprint: %w", err)
		}
		if err := pm.Select(f); err != nil {
			return nil, err
		}
	} else {
		// Explicit edges start at height zero; the finished stack is
		// lifted to the elevation afterwards.
		_, loop, err := pm.AddLoop(fp.Points3(0))
		if err != nil {
			return nil, fmt.Errorf("lay footprint: %w", err)
		}
		edges = loop
	}

	res, err := floor.Build(pm, edges, params, floor.Options{
		StartHeight: opts.StartHeight,
		Tolerance:   opts.Tolerance,
	})
	if err != nil {
		return nil, err
	}

	if !b.FromSelection && b.Elevation != 0 {
		if err := pm.Translate(pm.Verts(), v3.Vec{Z: b.Elevation}); err != nil {
			return nil, fmt.Errorf("lift to elevation: %w", err)
		}
	}

	parts, err := renderParts(pm, b.Name, res.FaceMap)
	if err != nil {
		return nil, err
	}
	return &Model{
		Building: b,
		Params:   params,
		Mesh:     pm,
		Result:   res,
		Parts:    parts,
	}, nil
}

// renderParts triangulates the tagged faces of pm, plus whatever is left
// untagged, into one mesh per category.
func renderParts(pm *polymesh.Mesh, name string, fm floor.FaceMap) ([]*Mesh, error) {
	tagged := fm.Index()
	var other []mesh.FaceID
	for _, f := range pm.Faces() {
		if _, ok := tagged[f]; !ok {
			other = append(other, f)
		}
	}

	groups := []struct {
		suffix string
		faces  []mesh.FaceID
	}{
		{PartSlabs, fm.Faces(floor.Slabs)},
		{PartWalls, fm.Faces(floor.Walls)},
		{PartOther, other},
	}
	var parts []*Mesh
	for _, g := range groups {
		m, err := Triangulate(pm, g.faces, name+"/"+g.suffix)
		if err != nil {
			return nil, err
		}
		if !m.IsEmpty() {
			parts = append(parts, m)
		}
	}
	return parts, nil
}

// Triangulate converts faces of pm into a flat-shaded render mesh.
// Faces with no area are skipped.
func Triangulate(pm *polymesh.Mesh, faces []mesh.FaceID, partName string) (*Mesh, error) {
	out := &Mesh{PartName: partName}
	for _, f := range faces {
		area, err := pm.FaceArea(f)
		if err != nil {
			return nil, fmt.Errorf("tessellate: face %d: %w", f, err)
		}
		if area < minFaceArea {
			continue
		}
		vs, err := pm.FaceVerts(f)
		if err != nil {
			return nil, err
		}
		n, err := pm.FaceNormal(f)
		if err != nil {
			return nil, err
		}
		pts := make([]v3.Vec, len(vs))
		for i, v := range vs {
			if pts[i], err = pm.Vert(v); err != nil {
				return nil, err
			}
		}
		for _, t := range triangulate(pts, n) {
			out.addTriangle(pts[t[0]], pts[t[1]], pts[t[2]], n)
		}
	}
	return out, nil
}
