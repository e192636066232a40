package tessellate_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/storey/pkg/floor"
	"github.com/chazu/storey/pkg/plan"
	"github.com/chazu/storey/pkg/tessellate"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// rect returns a w x d footprint with its corner at the origin.
func rect(w, d float64) plan.Footprint {
	return plan.Footprint{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: d}, {X: 0, Y: d}}
}

// project builds a single-building project with default parameters.
func project(b *plan.Building) *plan.Project {
	p := plan.New()
	p.AddBuilding(b)
	return p
}

// meshArea sums the triangle areas of m.
func meshArea(m *tessellate.Mesh) float64 {
	var a float64
	for _, t := range m.Triangles() {
		a += t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length() / 2
	}
	return a
}

// zRange returns the lowest and highest Z over all vertices of the model.
func zRange(m *tessellate.Model) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, part := range m.Parts {
		for i := 2; i < len(part.Vertices); i += 3 {
			z := float64(part.Vertices[i])
			lo = math.Min(lo, z)
			hi = math.Max(hi, z)
		}
	}
	return lo, hi
}

// ---------------------------------------------------------------------------
// Mesh helpers
// ---------------------------------------------------------------------------

func TestMeshEmpty(t *testing.T) {
	var m tessellate.Mesh
	if !m.IsEmpty() {
		t.Error("zero mesh should be empty")
	}
	if m.VertexCount() != 0 || m.TriangleCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0", m.VertexCount(), m.TriangleCount())
	}
	if len(m.Triangles()) != 0 {
		t.Error("expected no triangles")
	}
}

func TestSaveSTL(t *testing.T) {
	models, err := tessellate.Generate(project(&plan.Building{Name: "box", Footprint: rect(4, 4)}), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "box.stl")
	if err := tessellate.SaveSTL(path, models[0].Parts...); err != nil {
		t.Fatalf("SaveSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	var tris int
	for _, part := range models[0].Parts {
		tris += part.TriangleCount()
	}
	// Binary STL: 80-byte header, 4-byte count, 50 bytes per triangle.
	if want := int64(84 + 50*tris); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}
}

func TestSaveSTLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	if err := tessellate.SaveSTL(path, &tessellate.Mesh{}); err == nil {
		t.Fatal("expected error for empty mesh")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no file should be written, stat err = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

func TestGenerateOneStory(t *testing.T) {
	b := &plan.Building{Name: "box", Footprint: rect(4, 4)}
	models, err := tessellate.Generate(project(b), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(models))
	}
	m := models[0]
	if m.Building != b {
		t.Error("model should point at its building")
	}
	if m.Params != floor.DefaultParams() {
		t.Errorf("params = %+v, want defaults", m.Params)
	}
	if len(m.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(m.Parts))
	}

	walls := m.Part(tessellate.PartWalls)
	if walls == nil || walls.PartName != "box/walls" {
		t.Fatalf("walls part = %+v", walls)
	}
	if walls.TriangleCount() != 8 {
		t.Errorf("wall triangles = %d, want 8", walls.TriangleCount())
	}
	// Four 4-wide walls, each one floor height tall.
	if got, want := meshArea(walls), 16*m.Params.FloorHeight; math.Abs(got-want) > 1e-4 {
		t.Errorf("wall area = %g, want %g", got, want)
	}

	slabs := m.Part(tessellate.PartSlabs)
	if slabs == nil {
		t.Fatal("missing slabs part")
	}
	if n := len(m.Result.FaceMap.Faces(floor.Slabs)); slabs.TriangleCount() < n {
		t.Errorf("slab triangles = %d, want at least one per face (%d)", slabs.TriangleCount(), n)
	}

	other := m.Part(tessellate.PartOther)
	if other == nil || other.TriangleCount() != 2 {
		t.Fatalf("other part = %+v, want the cap as 2 triangles", other)
	}
	for i := 2; i < len(other.Vertices); i += 3 {
		if z := float64(other.Vertices[i]); math.Abs(z-m.Params.TotalHeight()) > 1e-5 {
			t.Errorf("cap vertex z = %g, want %g", z, m.Params.TotalHeight())
		}
	}
	for i := 0; i < len(other.Normals); i += 3 {
		if other.Normals[i+2] < 0.999 {
			t.Errorf("cap normal = %v, want +Z", other.Normals[i:i+3])
		}
	}

	if m.Part("missing") != nil {
		t.Error("unknown part should be nil")
	}
}

func TestGenerateElevation(t *testing.T) {
	tests := []struct {
		name          string
		fromSelection bool
	}{
		{"edge loop", false},
		{"selection", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &plan.Building{
				Name:          "raised",
				Footprint:     rect(6, 3),
				Elevation:     10,
				FromSelection: tt.fromSelection,
				Overrides:     plan.ParamOverrides{FloorCount: intPtr(3)},
			}
			models, err := tessellate.Generate(project(b), tessellate.Options{})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			m := models[0]
			lo, hi := zRange(m)
			if math.Abs(lo-10) > 1e-5 {
				t.Errorf("lowest z = %g, want 10", lo)
			}
			if want := 10 + m.Params.TotalHeight(); math.Abs(hi-want) > 1e-5 {
				t.Errorf("highest z = %g, want %g", hi, want)
			}
			if got := len(m.Result.FaceMap.Faces(floor.Walls)); got != 12 {
				t.Errorf("walls = %d, want 12", got)
			}
		})
	}
}

func TestGenerateSelectionDeletesGround(t *testing.T) {
	b := &plan.Building{Name: "lot", Footprint: rect(5, 5), Elevation: 2, FromSelection: true}
	models, err := tessellate.Generate(project(b), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	m := models[0]
	if m.Result.StartHeight != 2 {
		t.Errorf("start height = %g, want 2", m.Result.StartHeight)
	}
	if len(m.Result.Deleted) != 1 {
		t.Fatalf("deleted = %v, want the ground face", m.Result.Deleted)
	}
	for _, f := range m.Mesh.Faces() {
		if f == m.Result.Deleted[0] {
			t.Error("ground face still in mesh")
		}
	}
}

func TestGenerateClockwiseFootprint(t *testing.T) {
	cw := plan.Footprint{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}}
	models, err := tessellate.Generate(project(&plan.Building{Name: "cw", Footprint: cw}), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	other := models[0].Part(tessellate.PartOther)
	if other == nil {
		t.Fatal("missing cap")
	}
	if other.Normals[2] < 0.999 {
		t.Errorf("cap normal z = %g, want 1", other.Normals[2])
	}
}

func TestGenerateLShape(t *testing.T) {
	l := plan.Footprint{
		{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 2},
		{X: 2, Y: 2}, {X: 2, Y: 6}, {X: 0, Y: 6},
	}
	models, err := tessellate.Generate(project(&plan.Building{Name: "ell", Footprint: l}), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	other := models[0].Part(tessellate.PartOther)
	if other == nil {
		t.Fatal("missing cap")
	}
	if other.TriangleCount() != 4 {
		t.Errorf("cap triangles = %d, want 4", other.TriangleCount())
	}
	if got := meshArea(other); math.Abs(got-l.Area()) > 1e-4 {
		t.Errorf("cap area = %g, want %g", got, l.Area())
	}
}

func TestGenerateOrderAndNames(t *testing.T) {
	p := plan.New()
	for i, name := range []string{"a", "b", "c"} {
		off := float64(i) * 10
		p.AddBuilding(&plan.Building{Name: name, Footprint: plan.Footprint{
			{X: off, Y: 0}, {X: off + 3, Y: 0}, {X: off + 3, Y: 3}, {X: off, Y: 3},
		}})
	}
	models, err := tessellate.Generate(p, tessellate.Options{StartHeight: floor.LowestFace})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, m := range models {
		if m.Building.Name != p.Buildings[i].Name {
			t.Errorf("model %d = %q, want %q", i, m.Building.Name, p.Buildings[i].Name)
		}
		for _, part := range m.Parts {
			if filepath.Dir(part.PartName) != m.Building.Name {
				t.Errorf("part %q not named for %q", part.PartName, m.Building.Name)
			}
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if models, err := tessellate.Generate(nil, tessellate.Options{}); err != nil || models != nil {
		t.Errorf("nil project: %v, %v", models, err)
	}

	tests := []struct {
		name string
		b    *plan.Building
	}{
		{"zero floors", &plan.Building{Name: "z", Footprint: rect(2, 2), Overrides: plan.ParamOverrides{FloorCount: intPtr(0)}}},
		{"too few points", &plan.Building{Name: "line", Footprint: plan.Footprint{{X: 0, Y: 0}, {X: 1, Y: 0}}}},
		{"empty selection footprint", &plan.Building{Name: "sel", Footprint: plan.Footprint{v2.Vec{}}, FromSelection: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tessellate.Generate(project(tt.b), tessellate.Options{})
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTriangulateSkipsDegenerateFaces(t *testing.T) {
	models, err := tessellate.Generate(project(&plan.Building{Name: "box", Footprint: rect(4, 4)}), tessellate.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	m := models[0]
	out, err := tessellate.Triangulate(m.Mesh, nil, "none")
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if !out.IsEmpty() || out.PartName != "none" {
		t.Errorf("empty face list gave %+v", out)
	}

	all, err := tessellate.Triangulate(m.Mesh, m.Mesh.Faces(), "all")
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	var want int
	for _, part := range m.Parts {
		want += part.TriangleCount()
	}
	if all.TriangleCount() != want {
		t.Errorf("all faces = %d triangles, parts total %d", all.TriangleCount(), want)
	}
}

func intPtr(v int) *int { return &v }
