package polymesh

import (
	"github.com/chazu/storey/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ExtrudeEdgesOnly duplicates each edge and joins it to its duplicate
// with a quad. Vertices shared by several input edges are duplicated once,
// so a closed loop extrudes into a closed band.
//
// Each new quad walks its source edge opposite to any face already using
// that edge, keeping the winding of the band consistent with the
// surrounding surface. Wire edges keep their stored direction.
func (m *Mesh) ExtrudeEdgesOnly(edges []mesh.EdgeID) (mesh.ExtrudeResult, error) {
	var res mesh.ExtrudeResult
	src, err := m.uniqueEdges(edges)
	if err != nil {
		return res, err
	}
	if len(src) == 0 {
		return res, nil
	}

	used := m.directedUsage()
	dup := make(map[mesh.VertID]mesh.VertID)
	dupOf := func(v mesh.VertID) mesh.VertID {
		if d, ok := dup[v]; ok {
			return d
		}
		d := m.AddVert(m.verts[v].co)
		dup[v] = d
		res.Verts = append(res.Verts, d)
		res.SideEdges = append(res.SideEdges, m.ensureEdge(v, d))
		return d
	}

	for _, e := range src {
		v0, v1 := m.edges[e].v[0], m.edges[e].v[1]
		d0, d1 := dupOf(v0), dupOf(v1)
		res.Edges = append(res.Edges, m.ensureEdge(d0, d1))

		a, b := v0, v1
		if used[[2]mesh.VertID{a, b}] {
			a, b = b, a
		}
		res.Faces = append(res.Faces, m.newFace([]mesh.VertID{a, b, dup[b], dup[a]}))
	}
	return res, nil
}

// Translate moves the given vertices by offset. Each vertex moves once
// even when listed several times.
func (m *Mesh) Translate(verts []mesh.VertID, offset v3.Vec) error {
	for _, v := range verts {
		if err := m.checkVert(v); err != nil {
			return err
		}
	}
	moved := make(map[mesh.VertID]bool, len(verts))
	for _, v := range verts {
		if moved[v] {
			continue
		}
		moved[v] = true
		m.verts[v].co = m.verts[v].co.Add(offset)
	}
	return nil
}
