package polymesh

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
)

// Delete removes faces. With mesh.DeleteFaces, edges and vertices that
// belonged to the removed faces and are no longer used by anything are
// removed as well; wire geometry unrelated to the faces is kept.
func (m *Mesh) Delete(faces []mesh.FaceID, ctx mesh.DeleteContext) error {
	if ctx != mesh.DeleteFaces && ctx != mesh.DeleteFacesOnly {
		return fmt.Errorf("polymesh: unsupported delete context %s", ctx)
	}
	doomed, err := m.uniqueFaces(faces)
	if err != nil {
		return err
	}

	var keys []edgeKey
	verts := make(map[mesh.VertID]bool)
	for _, f := range doomed {
		vs := m.faces[f].verts
		for i := range vs {
			keys = append(keys, makeEdgeKey(vs[i], vs[(i+1)%len(vs)]))
			verts[vs[i]] = true
		}
		m.faces[f].alive = false
		m.faces[f].selected = false
	}
	if ctx == mesh.DeleteFacesOnly {
		return nil
	}

	m.pruneEdges(keys)

	inUse := make(map[mesh.VertID]bool)
	for _, e := range m.edges {
		if e.alive {
			inUse[e.v[0]] = true
			inUse[e.v[1]] = true
		}
	}
	for v := range verts {
		if !inUse[v] {
			m.verts[v].alive = false
		}
	}
	return nil
}

// ContextualCreate fills a single closed edge loop with a face. Anything
// else (open chains, branching edges, fewer than three edges) is left as
// wire and returned unchanged. When the loop already bounds a face, that
// face is returned.
func (m *Mesh) ContextualCreate(edges []mesh.EdgeID) (mesh.CreateResult, error) {
	loop, err := m.uniqueEdges(edges)
	if err != nil {
		return mesh.CreateResult{}, err
	}
	wire := mesh.CreateResult{Edges: loop}

	order, ok := m.walkLoop(loop)
	if !ok {
		return wire, nil
	}
	if f, found := m.findFace(order); found {
		return mesh.CreateResult{Face: f, HasFace: true}, nil
	}

	// The cap walks its first edge opposite to any face already on it.
	if m.directedUsage()[[2]mesh.VertID{order[0], order[1]}] {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	return mesh.CreateResult{Face: m.newFace(order), HasFace: true}, nil
}

// walkLoop orders the vertices of edges when they form exactly one simple
// cycle of at least three vertices.
func (m *Mesh) walkLoop(edges []mesh.EdgeID) ([]mesh.VertID, bool) {
	if len(edges) < 3 {
		return nil, false
	}
	adj := make(map[mesh.VertID][]mesh.VertID)
	for _, e := range edges {
		a, b := m.edges[e].v[0], m.edges[e].v[1]
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	if len(adj) != len(edges) {
		return nil, false
	}
	for _, nbs := range adj {
		if len(nbs) != 2 {
			return nil, false
		}
	}

	start := m.edges[edges[0]].v[0]
	order := []mesh.VertID{start}
	prev, cur := start, m.edges[edges[0]].v[1]
	for cur != start {
		if len(order) > len(edges) {
			return nil, false
		}
		order = append(order, cur)
		next := adj[cur][0]
		if next == prev {
			next = adj[cur][1]
		}
		prev, cur = cur, next
	}
	if len(order) != len(edges) {
		return nil, false
	}
	return order, true
}
