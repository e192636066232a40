package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/chazu/storey/pkg/config"
	"github.com/chazu/storey/pkg/engine"
	"github.com/chazu/storey/pkg/floor"
	"github.com/chazu/storey/pkg/plan"
	"github.com/chazu/storey/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the pipeline: evaluate a script or take a project, validate it,
// and generate the building meshes.
type App struct {
	engine *engine.Engine
	opts   tessellate.Options
}

// MeshData is the JSON-serializable mesh format produced per part.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Building string    `json:"building"`
	Category string    `json:"category"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Message  string `json:"message"`
	Building string `json:"building,omitempty"`
}

// EvalResult is the full result of one run.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	// Models holds the generated buildings for callers that export them.
	Models []*tessellate.Model `json:"-"`
}

// NewApp creates a new App with a default engine and options.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// NewAppFromConfig creates an App configured by cfg.
func NewAppFromConfig(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := engine.NewEngineWithCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &App{
		engine: e,
		opts: tessellate.Options{
			StartHeight: cfg.Rule(),
			Tolerance:   cfg.Tolerance,
		},
	}, nil
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the Lisp source into a project, with validation.
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:     w.Line,
			Col:      w.Col,
			Message:  w.Message,
			Building: w.Building,
		})
	}

	// Step 2: Any error stops the run before generation.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Generate meshes.
	a.generate(res.Project, &result)
	return result
}

// EvaluateProject validates and generates an already built project, such
// as one read from a YAML file.
func (a *App) EvaluateProject(p *plan.Project) EvalResult {
	result := newResult()

	v := plan.ValidateAll(p)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message, Building: w.Building})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error(), Building: e.Building})
		}
		return result
	}

	a.generate(p, &result)
	return result
}

func (a *App) generate(p *plan.Project, result *EvalResult) {
	models, err := tessellate.Generate(p, a.opts)
	if err != nil {
		log.Printf("Generate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "generation failed: " + err.Error(),
		})
		return
	}
	result.Models = models

	// Convert render meshes to the MeshData format.
	i := 0
	for _, m := range models {
		if n := strayFaces(m.Result); n > 0 {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message:  fmt.Sprintf("%d faces below the cap matched neither slab nor wall height", n),
				Building: m.Building.Name,
			})
		}
		for _, part := range m.Parts {
			result.Meshes = append(result.Meshes, MeshData{
				Vertices: part.Vertices,
				Normals:  part.Normals,
				Indices:  part.Indices,
				PartName: part.PartName,
				Building: m.Building.Name,
				Category: strings.TrimPrefix(part.PartName, m.Building.Name+"/"),
				Color:    colorPalette[i%len(colorPalette)],
			})
			i++
		}
	}
}

// strayFaces counts unmatched faces other than the cap.
func strayFaces(r *floor.Result) int {
	n := 0
	for _, f := range r.Unmatched {
		if r.Cap.HasFace && f == r.Cap.Face {
			continue
		}
		n++
	}
	return n
}
