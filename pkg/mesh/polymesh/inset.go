package polymesh

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// minShellDot bounds the shell factor so that vertices between nearly
// opposite faces are not pushed to infinity.
const minShellDot = 1e-3

// InsetRegion performs a depth-only region inset: the region is detached
// along its boundary, moved along its vertex normals by depth, and
// reconnected to the original boundary with one quad per boundary edge.
// Boundary edges on the open border of the mesh are bridged as well.
//
// Vertex offsets use a shell factor (1 / mean cosine between the vertex
// normal and its region faces) so that flat walls meeting at a corner
// stay parallel to their original planes.
func (m *Mesh) InsetRegion(faces []mesh.FaceID, depth float64) (mesh.InsetResult, error) {
	var res mesh.InsetResult
	region, err := m.uniqueFaces(faces)
	if err != nil {
		return res, err
	}
	if len(region) == 0 {
		return res, nil
	}
	inRegion := make(map[mesh.FaceID]bool, len(region))
	for _, f := range region {
		inRegion[f] = true
	}

	all := m.edgeFaceIndex()
	regionCount := make(map[edgeKey]int)
	var oldKeys []edgeKey
	for _, f := range region {
		vs := m.faces[f].verts
		for i := range vs {
			k := makeEdgeKey(vs[i], vs[(i+1)%len(vs)])
			if n := len(all[k]); n > 2 {
				return res, fmt.Errorf("polymesh: inset: edge %d-%d is shared by %d faces: %w",
					k[0], k[1], n, mesh.ErrDegenerateTopology)
			}
			if regionCount[k] == 0 {
				oldKeys = append(oldKeys, k)
			}
			regionCount[k]++
		}
	}

	type directed struct{ a, b mesh.VertID }
	var boundary []directed
	split := make(map[mesh.VertID]bool)
	for _, f := range region {
		vs := m.faces[f].verts
		for i := range vs {
			a, b := vs[i], vs[(i+1)%len(vs)]
			if regionCount[makeEdgeKey(a, b)] == 1 {
				boundary = append(boundary, directed{a, b})
				split[a] = true
				split[b] = true
			}
		}
	}
	// Vertices touching the outside only at a corner are detached too.
	for i := range m.faces {
		f := &m.faces[i]
		if !f.alive || inRegion[mesh.FaceID(i)] {
			continue
		}
		for _, v := range f.verts {
			split[v] = true
		}
	}

	// Offsets are computed on the original vertices, before rewiring.
	normals := make(map[mesh.FaceID]v3.Vec, len(region))
	var order []mesh.VertID
	vertFaces := make(map[mesh.VertID][]mesh.FaceID)
	for _, f := range region {
		normals[f] = m.faceNormal(f)
		for _, v := range m.faces[f].verts {
			if _, ok := vertFaces[v]; !ok {
				order = append(order, v)
			}
			vertFaces[v] = append(vertFaces[v], f)
		}
	}
	offsets := make(map[mesh.VertID]v3.Vec, len(order))
	for _, v := range order {
		offsets[v] = shellOffset(vertFaces[v], normals, depth)
	}

	// Detach: region faces move onto copies of their split vertices.
	copyOf := make(map[mesh.VertID]mesh.VertID)
	for _, v := range order {
		if !split[v] {
			copyOf[v] = v
			continue
		}
		copyOf[v] = m.AddVert(m.verts[v].co)
	}
	for _, f := range region {
		vs := m.faces[f].verts
		for i, v := range vs {
			vs[i] = copyOf[v]
		}
		for i := range vs {
			m.ensureEdge(vs[i], vs[(i+1)%len(vs)])
		}
	}
	for _, v := range order {
		nv := copyOf[v]
		m.verts[nv].co = m.verts[nv].co.Add(offsets[v])
	}

	// Bridge each boundary edge a->b to its detached copy. The bridge walks
	// b'->a' against the region face and a->b against the outside face.
	for _, d := range boundary {
		ca, cb := copyOf[d.a], copyOf[d.b]
		res.Faces = append(res.Faces, m.newFace([]mesh.VertID{cb, ca, d.a, d.b}))
	}

	m.pruneEdges(oldKeys)
	return res, nil
}

// shellOffset returns the displacement of a vertex shared by the given
// region faces for an inset of depth.
func shellOffset(faces []mesh.FaceID, normals map[mesh.FaceID]v3.Vec, depth float64) v3.Vec {
	var sum v3.Vec
	for _, f := range faces {
		sum = sum.Add(normals[f])
	}
	l := sum.Length()
	if l < normalEpsilon {
		return v3.Vec{}
	}
	n := sum.DivScalar(l)

	var dot float64
	var count int
	for _, f := range faces {
		fn := normals[f]
		if fn.Length() < normalEpsilon {
			continue
		}
		dot += n.Dot(fn)
		count++
	}
	if count == 0 {
		return v3.Vec{}
	}
	dot /= float64(count)
	if dot < minShellDot {
		return v3.Vec{}
	}
	return n.MulScalar(depth / dot)
}

// pruneEdges removes edges among keys that no live face uses anymore.
func (m *Mesh) pruneEdges(keys []edgeKey) {
	if len(keys) == 0 {
		return
	}
	idx := m.edgeFaceIndex()
	for _, k := range keys {
		if len(idx[k]) > 0 {
			continue
		}
		id, ok := m.edgeIndex[k]
		if !ok {
			continue
		}
		m.edges[id].alive = false
		delete(m.edgeIndex, k)
	}
}
