// Package polymesh implements the mesh.Adapter interface with an
// in-memory indexed polygon mesh. Element IDs are slice indices; deleted
// elements are marked dead and never reused, so IDs held by callers stay
// valid (or fail loudly) across topology operations.
package polymesh

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ mesh.Adapter = (*Mesh)(nil)

// normalEpsilon is the length below which a face normal is treated as zero.
const normalEpsilon = 1e-12

type vertex struct {
	co    v3.Vec
	alive bool
}

type edge struct {
	v     [2]mesh.VertID
	alive bool
}

type face struct {
	verts    []mesh.VertID
	selected bool
	alive    bool
}

// edgeKey is the undirected identity of an edge.
type edgeKey [2]mesh.VertID

func makeEdgeKey(a, b mesh.VertID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Mesh is a mutable polygon mesh. It is not safe for concurrent use.
type Mesh struct {
	verts     []vertex
	edges     []edge
	faces     []face
	edgeIndex map[edgeKey]mesh.EdgeID
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		edgeIndex: make(map[edgeKey]mesh.EdgeID),
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// AddVert adds a vertex at co.
func (m *Mesh) AddVert(co v3.Vec) mesh.VertID {
	m.verts = append(m.verts, vertex{co: co, alive: true})
	return mesh.VertID(len(m.verts) - 1)
}

// AddEdge adds an edge between a and b, or returns the existing one.
func (m *Mesh) AddEdge(a, b mesh.VertID) (mesh.EdgeID, error) {
	if err := m.checkVert(a); err != nil {
		return 0, err
	}
	if err := m.checkVert(b); err != nil {
		return 0, err
	}
	if a == b {
		return 0, fmt.Errorf("polymesh: edge from vertex %d to itself: %w", a, mesh.ErrDegenerateTopology)
	}
	return m.ensureEdge(a, b), nil
}

// AddFace adds a polygon through the given vertices in winding order.
// Missing edges are created.
func (m *Mesh) AddFace(vs ...mesh.VertID) (mesh.FaceID, error) {
	if len(vs) < 3 {
		return 0, fmt.Errorf("polymesh: face needs at least 3 vertices, got %d: %w", len(vs), mesh.ErrDegenerateTopology)
	}
	seen := make(map[mesh.VertID]bool, len(vs))
	for _, v := range vs {
		if err := m.checkVert(v); err != nil {
			return 0, err
		}
		if seen[v] {
			return 0, fmt.Errorf("polymesh: face repeats vertex %d: %w", v, mesh.ErrDegenerateTopology)
		}
		seen[v] = true
	}
	if f, ok := m.findFace(vs); ok {
		return 0, fmt.Errorf("polymesh: face %d already spans these vertices: %w", f, mesh.ErrDegenerateTopology)
	}
	return m.newFace(vs), nil
}

// AddLoop adds a closed wire polyline through points and returns its
// vertices and edges in order.
func (m *Mesh) AddLoop(points []v3.Vec) ([]mesh.VertID, []mesh.EdgeID, error) {
	if len(points) < 3 {
		return nil, nil, fmt.Errorf("polymesh: loop needs at least 3 points, got %d: %w", len(points), mesh.ErrDegenerateTopology)
	}
	vs := make([]mesh.VertID, len(points))
	for i, p := range points {
		vs[i] = m.AddVert(p)
	}
	es := make([]mesh.EdgeID, len(vs))
	for i := range vs {
		es[i] = m.ensureEdge(vs[i], vs[(i+1)%len(vs)])
	}
	return vs, es, nil
}

// AddPolygon adds a face with fresh vertices at points.
func (m *Mesh) AddPolygon(points []v3.Vec) (mesh.FaceID, error) {
	if len(points) < 3 {
		return 0, fmt.Errorf("polymesh: polygon needs at least 3 points, got %d: %w", len(points), mesh.ErrDegenerateTopology)
	}
	vs := make([]mesh.VertID, len(points))
	for i, p := range points {
		vs[i] = m.AddVert(p)
	}
	return m.newFace(vs), nil
}

// ensureEdge returns the live edge between a and b, creating it if needed.
// The stored direction is a->b when the edge is new.
func (m *Mesh) ensureEdge(a, b mesh.VertID) mesh.EdgeID {
	k := makeEdgeKey(a, b)
	if id, ok := m.edgeIndex[k]; ok {
		return id
	}
	m.edges = append(m.edges, edge{v: [2]mesh.VertID{a, b}, alive: true})
	id := mesh.EdgeID(len(m.edges) - 1)
	m.edgeIndex[k] = id
	return id
}

// newFace appends a face without validation and creates its edges.
func (m *Mesh) newFace(vs []mesh.VertID) mesh.FaceID {
	verts := make([]mesh.VertID, len(vs))
	copy(verts, vs)
	for i := range verts {
		m.ensureEdge(verts[i], verts[(i+1)%len(verts)])
	}
	m.faces = append(m.faces, face{verts: verts, alive: true})
	return mesh.FaceID(len(m.faces) - 1)
}

// findFace returns a live face spanning exactly the vertex set vs.
func (m *Mesh) findFace(vs []mesh.VertID) (mesh.FaceID, bool) {
	want := make(map[mesh.VertID]bool, len(vs))
	for _, v := range vs {
		want[v] = true
	}
	for i := range m.faces {
		f := &m.faces[i]
		if !f.alive || len(f.verts) != len(want) {
			continue
		}
		match := true
		for _, v := range f.verts {
			if !want[v] {
				match = false
				break
			}
		}
		if match {
			return mesh.FaceID(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Validation helpers
// ---------------------------------------------------------------------------

func (m *Mesh) checkVert(v mesh.VertID) error {
	if v < 0 || int(v) >= len(m.verts) || !m.verts[v].alive {
		return fmt.Errorf("polymesh: vertex %d: %w", v, mesh.ErrUnknownElement)
	}
	return nil
}

func (m *Mesh) checkEdge(e mesh.EdgeID) error {
	if e < 0 || int(e) >= len(m.edges) || !m.edges[e].alive {
		return fmt.Errorf("polymesh: edge %d: %w", e, mesh.ErrUnknownElement)
	}
	return nil
}

func (m *Mesh) checkFace(f mesh.FaceID) error {
	if f < 0 || int(f) >= len(m.faces) || !m.faces[f].alive {
		return fmt.Errorf("polymesh: face %d: %w", f, mesh.ErrUnknownElement)
	}
	return nil
}

// uniqueFaces checks and de-duplicates faces, keeping first-seen order.
func (m *Mesh) uniqueFaces(faces []mesh.FaceID) ([]mesh.FaceID, error) {
	seen := make(map[mesh.FaceID]bool, len(faces))
	out := make([]mesh.FaceID, 0, len(faces))
	for _, f := range faces {
		if err := m.checkFace(f); err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// uniqueEdges checks and de-duplicates edges, keeping first-seen order.
func (m *Mesh) uniqueEdges(edges []mesh.EdgeID) ([]mesh.EdgeID, error) {
	seen := make(map[mesh.EdgeID]bool, len(edges))
	out := make([]mesh.EdgeID, 0, len(edges))
	for _, e := range edges {
		if err := m.checkEdge(e); err != nil {
			return nil, err
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// VertCount returns the number of live vertices.
func (m *Mesh) VertCount() int {
	n := 0
	for _, v := range m.verts {
		if v.alive {
			n++
		}
	}
	return n
}

// EdgeCount returns the number of live edges.
func (m *Mesh) EdgeCount() int {
	n := 0
	for _, e := range m.edges {
		if e.alive {
			n++
		}
	}
	return n
}

// FaceCount returns the number of live faces.
func (m *Mesh) FaceCount() int {
	n := 0
	for _, f := range m.faces {
		if f.alive {
			n++
		}
	}
	return n
}

// Verts lists live vertices in ascending ID order.
func (m *Mesh) Verts() []mesh.VertID {
	out := make([]mesh.VertID, 0, len(m.verts))
	for i, v := range m.verts {
		if v.alive {
			out = append(out, mesh.VertID(i))
		}
	}
	return out
}

// Edges lists live edges in ascending ID order.
func (m *Mesh) Edges() []mesh.EdgeID {
	out := make([]mesh.EdgeID, 0, len(m.edges))
	for i, e := range m.edges {
		if e.alive {
			out = append(out, mesh.EdgeID(i))
		}
	}
	return out
}

// Faces lists live faces in ascending ID order.
func (m *Mesh) Faces() []mesh.FaceID {
	out := make([]mesh.FaceID, 0, len(m.faces))
	for i, f := range m.faces {
		if f.alive {
			out = append(out, mesh.FaceID(i))
		}
	}
	return out
}

// Vert returns the position of a vertex.
func (m *Mesh) Vert(v mesh.VertID) (v3.Vec, error) {
	if err := m.checkVert(v); err != nil {
		return v3.Vec{}, err
	}
	return m.verts[v].co, nil
}

// EdgeVerts returns the two endpoints of an edge.
func (m *Mesh) EdgeVerts(e mesh.EdgeID) ([2]mesh.VertID, error) {
	if err := m.checkEdge(e); err != nil {
		return [2]mesh.VertID{}, err
	}
	return m.edges[e].v, nil
}

// FaceVerts returns a copy of a face's vertices in winding order.
func (m *Mesh) FaceVerts(f mesh.FaceID) ([]mesh.VertID, error) {
	if err := m.checkFace(f); err != nil {
		return nil, err
	}
	out := make([]mesh.VertID, len(m.faces[f].verts))
	copy(out, m.faces[f].verts)
	return out, nil
}

// FaceEdges returns the edges of a face in winding order.
func (m *Mesh) FaceEdges(f mesh.FaceID) ([]mesh.EdgeID, error) {
	if err := m.checkFace(f); err != nil {
		return nil, err
	}
	vs := m.faces[f].verts
	out := make([]mesh.EdgeID, len(vs))
	for i := range vs {
		out[i] = m.edgeIndex[makeEdgeKey(vs[i], vs[(i+1)%len(vs)])]
	}
	return out, nil
}

// EdgeFaces returns the live faces using an edge, in ascending ID order.
func (m *Mesh) EdgeFaces(e mesh.EdgeID) ([]mesh.FaceID, error) {
	if err := m.checkEdge(e); err != nil {
		return nil, err
	}
	k := makeEdgeKey(m.edges[e].v[0], m.edges[e].v[1])
	return m.edgeFaceIndex()[k], nil
}

// FaceCenter returns the median center (vertex average) of a face.
func (m *Mesh) FaceCenter(f mesh.FaceID) (v3.Vec, error) {
	if err := m.checkFace(f); err != nil {
		return v3.Vec{}, err
	}
	return m.faceCenter(f), nil
}

// FaceNormal returns the unit normal of a face following its winding, or
// the zero vector for a degenerate face.
func (m *Mesh) FaceNormal(f mesh.FaceID) (v3.Vec, error) {
	if err := m.checkFace(f); err != nil {
		return v3.Vec{}, err
	}
	return m.faceNormal(f), nil
}

func (m *Mesh) faceCenter(f mesh.FaceID) v3.Vec {
	vs := m.faces[f].verts
	var sum v3.Vec
	for _, v := range vs {
		sum = sum.Add(m.verts[v].co)
	}
	return sum.DivScalar(float64(len(vs)))
}

// faceNormal uses Newell's method so that non-planar and concave polygons
// still get a stable normal.
func (m *Mesh) faceNormal(f mesh.FaceID) v3.Vec {
	vs := m.faces[f].verts
	var n v3.Vec
	for i := range vs {
		a := m.verts[vs[i]].co
		b := m.verts[vs[(i+1)%len(vs)]].co
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := n.Length()
	if l < normalEpsilon {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// FaceArea returns the area of a face.
func (m *Mesh) FaceArea(f mesh.FaceID) (float64, error) {
	if err := m.checkFace(f); err != nil {
		return 0, err
	}
	vs := m.faces[f].verts
	var n v3.Vec
	for i := range vs {
		a := m.verts[vs[i]].co
		b := m.verts[vs[(i+1)%len(vs)]].co
		n = n.Add(a.Cross(b))
	}
	return n.Length() / 2, nil
}

// edgeFaceIndex maps every edge to the live faces using it.
func (m *Mesh) edgeFaceIndex() map[edgeKey][]mesh.FaceID {
	idx := make(map[edgeKey][]mesh.FaceID)
	for i := range m.faces {
		f := &m.faces[i]
		if !f.alive {
			continue
		}
		for j := range f.verts {
			k := makeEdgeKey(f.verts[j], f.verts[(j+1)%len(f.verts)])
			idx[k] = append(idx[k], mesh.FaceID(i))
		}
	}
	return idx
}

// directedUsage records every directed edge a->b walked by a live face.
func (m *Mesh) directedUsage() map[[2]mesh.VertID]bool {
	used := make(map[[2]mesh.VertID]bool)
	for i := range m.faces {
		f := &m.faces[i]
		if !f.alive {
			continue
		}
		for j := range f.verts {
			used[[2]mesh.VertID{f.verts[j], f.verts[(j+1)%len(f.verts)]}] = true
		}
	}
	return used
}

// hasDirected reports whether face f walks the directed edge a->b.
func (m *Mesh) hasDirected(f mesh.FaceID, a, b mesh.VertID) bool {
	vs := m.faces[f].verts
	for i := range vs {
		if vs[i] == a && vs[(i+1)%len(vs)] == b {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// Select marks faces as selected.
func (m *Mesh) Select(faces ...mesh.FaceID) error {
	for _, f := range faces {
		if err := m.checkFace(f); err != nil {
			return err
		}
		m.faces[f].selected = true
	}
	return nil
}

// Deselect clears the selection flag of the given faces.
func (m *Mesh) Deselect(faces ...mesh.FaceID) error {
	for _, f := range faces {
		if err := m.checkFace(f); err != nil {
			return err
		}
		m.faces[f].selected = false
	}
	return nil
}

// ClearSelection deselects every face.
func (m *Mesh) ClearSelection() {
	for i := range m.faces {
		m.faces[i].selected = false
	}
}

// SelectedFaces lists selected live faces in ascending ID order.
func (m *Mesh) SelectedFaces() []mesh.FaceID {
	var out []mesh.FaceID
	for i, f := range m.faces {
		if f.alive && f.selected {
			out = append(out, mesh.FaceID(i))
		}
	}
	return out
}

// BoundaryEdges returns the edges bordering exactly one face of the
// region, in the order they are first walked. Unknown faces are skipped.
func (m *Mesh) BoundaryEdges(faces []mesh.FaceID) []mesh.EdgeID {
	seen := make(map[mesh.FaceID]bool, len(faces))
	count := make(map[edgeKey]int)
	var order []edgeKey
	for _, f := range faces {
		if m.checkFace(f) != nil || seen[f] {
			continue
		}
		seen[f] = true
		vs := m.faces[f].verts
		for i := range vs {
			k := makeEdgeKey(vs[i], vs[(i+1)%len(vs)])
			if count[k] == 0 {
				order = append(order, k)
			}
			count[k]++
		}
	}
	var out []mesh.EdgeID
	for _, k := range order {
		if count[k] == 1 {
			out = append(out, m.edgeIndex[k])
		}
	}
	return out
}
