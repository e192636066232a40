package polymesh

import (
	"sort"

	"github.com/chazu/storey/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RecalcNormals makes the winding of the given faces consistent and
// outward facing. Faces are grouped into components connected through
// manifold edges (edges shared by exactly two of the given faces). In each
// component the face farthest from the component centroid is turned to
// face away from it, and that winding is propagated to its neighbours.
func (m *Mesh) RecalcNormals(faces []mesh.FaceID) error {
	set, err := m.uniqueFaces(faces)
	if err != nil {
		return err
	}
	inSet := make(map[mesh.FaceID]bool, len(set))
	for _, f := range set {
		inSet[f] = true
	}
	idx := make(map[edgeKey][]mesh.FaceID)
	for _, f := range set {
		vs := m.faces[f].verts
		for i := range vs {
			k := makeEdgeKey(vs[i], vs[(i+1)%len(vs)])
			idx[k] = append(idx[k], f)
		}
	}

	neighbours := func(f mesh.FaceID, visit func(nb mesh.FaceID, a, b mesh.VertID)) {
		vs := m.faces[f].verts
		for i := range vs {
			a, b := vs[i], vs[(i+1)%len(vs)]
			adj := idx[makeEdgeKey(a, b)]
			if len(adj) != 2 {
				continue
			}
			nb := adj[0]
			if nb == f {
				nb = adj[1]
			}
			visit(nb, a, b)
		}
	}

	seen := make(map[mesh.FaceID]bool, len(set))
	for _, start := range set {
		if seen[start] {
			continue
		}
		comp := []mesh.FaceID{start}
		seen[start] = true
		for i := 0; i < len(comp); i++ {
			neighbours(comp[i], func(nb mesh.FaceID, _, _ mesh.VertID) {
				if !seen[nb] {
					seen[nb] = true
					comp = append(comp, nb)
				}
			})
		}
		m.orientComponent(comp, neighbours)
	}
	return nil
}

func (m *Mesh) orientComponent(comp []mesh.FaceID, neighbours func(mesh.FaceID, func(mesh.FaceID, mesh.VertID, mesh.VertID))) {
	centers := make(map[mesh.FaceID]v3.Vec, len(comp))
	var centroid v3.Vec
	for _, f := range comp {
		c := m.faceCenter(f)
		centers[f] = c
		centroid = centroid.Add(c)
	}
	centroid = centroid.DivScalar(float64(len(comp)))

	byDistance := make([]mesh.FaceID, len(comp))
	copy(byDistance, comp)
	sort.SliceStable(byDistance, func(i, j int) bool {
		return centers[byDistance[i]].Sub(centroid).Length() > centers[byDistance[j]].Sub(centroid).Length()
	})

	seed := comp[0]
	for _, f := range byDistance {
		out := centers[f].Sub(centroid)
		n := m.faceNormal(f)
		if out.Length() < normalEpsilon || n.Length() < normalEpsilon {
			continue
		}
		seed = f
		if n.Dot(out) < 0 {
			m.flip(f)
		}
		break
	}

	done := map[mesh.FaceID]bool{seed: true}
	queue := []mesh.FaceID{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		neighbours(cur, func(nb mesh.FaceID, a, b mesh.VertID) {
			if done[nb] {
				return
			}
			done[nb] = true
			if m.hasDirected(nb, a, b) {
				m.flip(nb)
			}
			queue = append(queue, nb)
		})
	}
}

// flip reverses the winding of a face.
func (m *Mesh) flip(f mesh.FaceID) {
	vs := m.faces[f].verts
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
}
