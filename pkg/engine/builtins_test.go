package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/storey/pkg/plan"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(building "a" :floors 3)`,
			expect: `(building "a" "__kw_floors" 3)`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:floor-height`,
			expect: `"__kw_floor-height"`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \":hi\"" :x`,
			expect: `"say \":hi\"" "__kw_x"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw`",
			expect: "`raw :kw`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(regular-polygon :sides 6)`,
			expect: `(regular_polygon "__kw_sides" 6)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5) (- x 1)`,
			expect: `(- 10 5) (- x 1)`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(+ 1 2)",
			expect: "// comment with :keyword\n(+ 1 2)",
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func mustEvaluate(t *testing.T, src string) *plan.Project {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if p == nil {
		t.Fatal("expected non-nil project")
	}
	return p
}

func mustFail(t *testing.T, src, substr string) {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil project")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, substr) {
		t.Errorf("message = %q, want containing %q", evalErrs[0].Message, substr)
	}
}

// ---------------------------------------------------------------------------
// DSL tests
// ---------------------------------------------------------------------------

func TestBuildingScript(t *testing.T) {
	p := mustEvaluate(t, `
;; A tower on a 10x8 plot.
(def plan (footprint (vec2 0 0) (vec2 10 0) (vec2 10 8) (vec2 0 8)))
(defaults :floors 2 :floor-height 3.0 :slab-thickness 0.2 :slab-outset 0.1)
(building "tower" :footprint plan :floors 5 :elevation 0 :from-selection false)
`)

	if p.BuildingCount() != 1 {
		t.Fatalf("expected 1 building, got %d", p.BuildingCount())
	}
	tower := p.Lookup("tower")
	if tower == nil {
		t.Fatal("expected building named 'tower'")
	}
	if len(tower.Footprint) != 4 || tower.Footprint[2] != (v2.Vec{X: 10, Y: 8}) {
		t.Errorf("footprint = %v", tower.Footprint)
	}
	if tower.FromSelection {
		t.Error("from-selection should be false")
	}

	params := p.Params(tower)
	if params.FloorCount != 5 {
		t.Errorf("floors = %d, want 5", params.FloorCount)
	}
	if params.FloorHeight != 3.0 || params.SlabThickness != 0.2 || params.SlabOutset != 0.1 {
		t.Errorf("params = %+v", params)
	}
}

func TestDefaultsApplyRegardlessOfOrder(t *testing.T) {
	p := mustEvaluate(t, `
(building "early" :footprint (rect 5 5))
(defaults :floors 4)
`)
	if got := p.Params(p.MustLookup("early")).FloorCount; got != 4 {
		t.Errorf("floors = %d, want 4", got)
	}
}

func TestFootprintForms(t *testing.T) {
	p := mustEvaluate(t, `
(building "array" :footprint (footprint [[0 0] [4 0] [4 3]]))
(building "list" :footprint (footprint (list (vec2 0 0) (vec2 4 0) (vec2 4 3))))
(building "offset" :footprint (rect 2 3 :at (vec2 10 20)) :elevation 7.5 :from-selection true)
(building "hex" :footprint (regular-polygon :sides 6 :radius 2))
`)

	for _, name := range []string{"array", "list"} {
		fp := p.MustLookup(name).Footprint
		if len(fp) != 3 || fp.Area() != 6 {
			t.Errorf("%s: footprint = %v, area %g", name, fp, fp.Area())
		}
	}

	off := p.MustLookup("offset")
	if off.Footprint[0] != (v2.Vec{X: 10, Y: 20}) || off.Footprint[2] != (v2.Vec{X: 12, Y: 23}) {
		t.Errorf("offset footprint = %v", off.Footprint)
	}
	if off.Elevation != 7.5 || !off.FromSelection {
		t.Errorf("offset = %+v", off)
	}

	hex := p.MustLookup("hex").Footprint
	if len(hex) != 6 {
		t.Fatalf("hex has %d points", len(hex))
	}
	want := 3 * math.Sqrt(3) / 2 * 4
	if math.Abs(hex.Area()-want) > 1e-9 {
		t.Errorf("hex area = %g, want %g", hex.Area(), want)
	}
}

func TestAreaBuiltin(t *testing.T) {
	p := mustEvaluate(t, `
(def a (area (rect 3 4)))
(building "sized" :footprint (rect a 1))
`)
	if got := p.MustLookup("sized").Footprint[1].X; got != 12 {
		t.Errorf("width = %g, want 12", got)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		substr string
	}{
		{"vec2 arity", `(vec2 1)`, "exactly 2"},
		{"vec2 type", `(vec2 "a" 1)`, "expected number"},
		{"missing footprint", `(building "a" :floors 2)`, "required"},
		{"bad footprint", `(building "a" :footprint 3)`, "expected footprint"},
		{"unknown building keyword", `(building "a" :footprint (rect 1 1) :color 3)`, "unknown keyword :color"},
		{"unknown defaults keyword", `(defaults :height 3)`, "unknown keyword :height"},
		{"fractional floors", `(defaults :floors 2.5)`, "whole number"},
		{"bad bool", `(building "a" :footprint (rect 1 1) :from-selection 1)`, "true or false"},
		{"polygon sides", `(regular-polygon :sides 2 :radius 1)`, "at least 3"},
		{"point arity", `(footprint [[0 0 0]])`, "expected [x y]"},
		{"building name", `(building 3 :footprint (rect 1 1))`, "expected string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.src, tt.substr)
		})
	}
}
