package tessellate

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // "<building>/<category>"
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// addTriangle appends a flat-shaded triangle.
func (m *Mesh) addTriangle(a, b, c, n v3.Vec) {
	base := uint32(m.VertexCount())
	for i, v := range [3]v3.Vec{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		m.Indices = append(m.Indices, base+uint32(i))
	}
}

// Triangles converts the mesh to sdfx triangles.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	vert := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t+2 < len(m.Indices); t += 3 {
		out = append(out, &sdf.Triangle3{
			vert(m.Indices[t]),
			vert(m.Indices[t+1]),
			vert(m.Indices[t+2]),
		})
	}
	return out
}

// SaveSTL writes the triangles of all meshes to one binary STL file.
func SaveSTL(path string, meshes ...*Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		tris = append(tris, m.Triangles()...)
	}
	if len(tris) == 0 {
		return fmt.Errorf("tessellate: %s: nothing to write", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("tessellate: save %s: %w", path, err)
	}
	return nil
}
