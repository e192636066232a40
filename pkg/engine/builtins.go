package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/storey/pkg/plan"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 wraps a footprint point.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpFootprint wraps a plan.Footprint so it can be returned from
// `footprint` and consumed by `building`.
type sexpFootprint struct {
	fp plan.Footprint
}

func (f *sexpFootprint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(footprint %d points, area %g)", len(f.fp), f.fp.Area())
}
func (f *sexpFootprint) Type() *zygo.RegisteredType { return nil }

// sexpBuildingRef names a building added to the project.
type sexpBuildingRef struct {
	name string
}

func (b *sexpBuildingRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(building %q)", b.name)
}
func (b *sexpBuildingRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword at the end with no value is recorded as a nil flag.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		result.order = append(result.order, name)
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// unknown returns the first keyword not in allowed.
func (a kwArgs) unknown(allowed ...string) (string, bool) {
	for _, k := range a.order {
		found := false
		for _, name := range allowed {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return k, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt or a whole SexpFloat.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 accepts a (vec2 x y) value or a two-number array [x y].
func toVec2(s zygo.Sexp) (v2.Vec, error) {
	switch v := s.(type) {
	case *sexpVec2:
		return v.vec, nil
	case *zygo.SexpArray:
		if len(v.Val) != 2 {
			return v2.Vec{}, fmt.Errorf("expected [x y], got %d elements", len(v.Val))
		}
		x, err := toFloat64(v.Val[0])
		if err != nil {
			return v2.Vec{}, err
		}
		y, err := toFloat64(v.Val[1])
		if err != nil {
			return v2.Vec{}, err
		}
		return v2.Vec{X: x, Y: y}, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toFootprint extracts a footprint from a sexpFootprint.
func toFootprint(s zygo.Sexp) (plan.Footprint, error) {
	if f, ok := s.(*sexpFootprint); ok {
		return f.fp, nil
	}
	return nil, fmt.Errorf("expected footprint, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// paramKeywords are the story parameters accepted by defaults and building.
var paramKeywords = []string{"floors", "floor-height", "slab-thickness", "slab-outset"}

// parseOverrides reads story parameter keywords into overrides.
func parseOverrides(fn string, pa kwArgs) (plan.ParamOverrides, error) {
	var o plan.ParamOverrides
	if v, ok := pa.kw["floors"]; ok {
		n, err := toInt(v)
		if err != nil {
			return o, fmt.Errorf("%s: floors: %w", fn, err)
		}
		o.FloorCount = &n
	}
	for _, f := range []struct {
		kw  string
		dst **float64
	}{
		{"floor-height", &o.FloorHeight},
		{"slab-thickness", &o.SlabThickness},
		{"slab-outset", &o.SlabOutset},
	} {
		v, ok := pa.kw[f.kw]
		if !ok {
			continue
		}
		x, err := toFloat64(v)
		if err != nil {
			return o, fmt.Errorf("%s: %s: %w", fn, f.kw, err)
		}
		*f.dst = &x
	}
	return o, nil
}

// offsetBy returns the :at keyword point, or the origin.
func offsetBy(fn string, pa kwArgs) (v2.Vec, error) {
	v, ok := pa.kw["at"]
	if !ok {
		return v2.Vec{}, nil
	}
	at, err := toVec2(v)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("%s: at: %w", fn, err)
	}
	return at, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the building DSL into a zygomys environment.
// The builtins populate p during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *plan.Project) {

	// -----------------------------------------------------------------------
	// (vec2 10 8)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (footprint (vec2 0 0) (vec2 10 0) (vec2 10 8) (vec2 0 8))
	// (footprint [[0 0] [10 0] [10 8] [0 8]])
	// -----------------------------------------------------------------------
	env.AddFunction("footprint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := args
		if len(args) == 1 {
			if _, isPoint := args[0].(*sexpVec2); !isPoint {
				list, err := sexpListToSlice(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("footprint: %w", err)
				}
				items = list
			}
		}
		fp := make(plan.Footprint, 0, len(items))
		for i, item := range items {
			pt, err := toVec2(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("footprint: point %d: %w", i, err)
			}
			fp = append(fp, pt)
		}
		return &sexpFootprint{fp: fp}, nil
	})

	// -----------------------------------------------------------------------
	// (rect 10 8 :at (vec2 5 5))
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect requires a width and a depth")
		}
		w, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		d, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: depth: %w", err)
		}
		at, err := offsetBy("rect", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		fp := plan.Footprint{
			{X: at.X, Y: at.Y},
			{X: at.X + w, Y: at.Y},
			{X: at.X + w, Y: at.Y + d},
			{X: at.X, Y: at.Y + d},
		}
		return &sexpFootprint{fp: fp}, nil
	})

	// -----------------------------------------------------------------------
	// (regular-polygon :sides 6 :radius 5 :at (vec2 0 0))
	//
	// Registered as "regular_polygon"; the preprocessor rewrites the
	// kebab-case name.
	// -----------------------------------------------------------------------
	env.AddFunction("regular_polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sides, radius := 0, 0.0
		if v, ok := pa.kw["sides"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("regular-polygon: sides: %w", err)
			}
			sides = n
		}
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("regular-polygon: radius: %w", err)
			}
			radius = r
		}
		if sides < 3 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: need at least 3 sides, got %d", sides)
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: radius must be positive, got %g", radius)
		}
		at, err := offsetBy("regular-polygon", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		fp := make(plan.Footprint, sides)
		for i := range fp {
			a := 2 * math.Pi * float64(i) / float64(sides)
			fp[i] = v2.Vec{X: at.X + radius*math.Cos(a), Y: at.Y + radius*math.Sin(a)}
		}
		return &sexpFootprint{fp: fp}, nil
	})

	// -----------------------------------------------------------------------
	// (area fp)
	// -----------------------------------------------------------------------
	env.AddFunction("area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("area requires a footprint")
		}
		fp, err := toFootprint(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("area: %w", err)
		}
		return &zygo.SexpFloat{Val: fp.Area()}, nil
	})

	// -----------------------------------------------------------------------
	// (defaults :floors 2 :floor-height 3.0 :slab-thickness 0.2 :slab-outset 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if k, bad := pa.unknown(paramKeywords...); bad {
			return zygo.SexpNull, fmt.Errorf("defaults: unknown keyword :%s", k)
		}
		o, err := parseOverrides("defaults", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p.Defaults = o.Apply(p.Defaults)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (building "tower" :footprint fp :floors 5 :elevation 0 :from-selection false)
	// -----------------------------------------------------------------------
	env.AddFunction("building", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("building requires a name argument")
		}
		bName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("building: name: %w", err)
		}
		allowed := append([]string{"footprint", "elevation", "from-selection"}, paramKeywords...)
		if k, bad := pa.unknown(allowed...); bad {
			return zygo.SexpNull, fmt.Errorf("building %q: unknown keyword :%s", bName, k)
		}

		b := &plan.Building{Name: bName}
		v, ok := pa.kw["footprint"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("building %q: :footprint is required", bName)
		}
		if b.Footprint, err = toFootprint(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("building %q: footprint: %w", bName, err)
		}
		if v, ok := pa.kw["elevation"]; ok {
			if b.Elevation, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("building %q: elevation: %w", bName, err)
			}
		}
		if v, ok := pa.kw["from-selection"]; ok {
			if b.FromSelection, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("building %q: from-selection: %w", bName, err)
			}
		}
		if b.Overrides, err = parseOverrides(fmt.Sprintf("building %q", bName), pa); err != nil {
			return zygo.SexpNull, err
		}

		p.AddBuilding(b)
		return &sexpBuildingRef{name: bName}, nil
	})
}
