// Package plan defines the building project produced by evaluating a
// building script or loading a project file. A project is a set of named
// buildings, each a floorplan footprint with story parameters, plus
// project-wide default parameters. Projects are never mutated by
// generation; each evaluation produces a new one.
package plan

import (
	"fmt"

	"github.com/chazu/storey/pkg/floor"
)

// ParamOverrides are per-building parameters. Nil fields fall back to the
// project defaults.
type ParamOverrides struct {
	FloorCount    *int     `json:"floor_count,omitempty" yaml:"floor_count,omitempty"`
	FloorHeight   *float64 `json:"floor_height,omitempty" yaml:"floor_height,omitempty"`
	SlabThickness *float64 `json:"slab_thickness,omitempty" yaml:"slab_thickness,omitempty"`
	SlabOutset    *float64 `json:"slab_outset,omitempty" yaml:"slab_outset,omitempty"`
}

// Apply returns base with every set override applied.
func (o ParamOverrides) Apply(base floor.Params) floor.Params {
	if o.FloorCount != nil {
		base.FloorCount = *o.FloorCount
	}
	if o.FloorHeight != nil {
		base.FloorHeight = *o.FloorHeight
	}
	if o.SlabThickness != nil {
		base.SlabThickness = *o.SlabThickness
	}
	if o.SlabOutset != nil {
		base.SlabOutset = *o.SlabOutset
	}
	return base
}

// Building is one footprint to be extruded into stories.
type Building struct {
	Name      string         `json:"name"`
	Footprint Footprint      `json:"footprint"`
	Elevation float64        `json:"elevation,omitempty"` // Z of the footprint
	Overrides ParamOverrides `json:"overrides"`

	// FromSelection lays the footprint as a selected face and lets the
	// builder derive the boundary and start height from it. Otherwise the
	// footprint is laid as a bare edge loop.
	FromSelection bool `json:"from_selection,omitempty"`
}

// Project is the top-level structure produced by evaluation.
type Project struct {
	Buildings []*Building    `json:"buildings"`
	NameIndex map[string]int `json:"name_index"`
	Defaults  floor.Params   `json:"defaults"`
	Version   uint64         `json:"version"`
}

// New creates an empty project with default parameters.
func New() *Project {
	return &Project{
		NameIndex: make(map[string]int),
		Defaults:  floor.DefaultParams(),
	}
}

// AddBuilding appends b. It does not check for duplicate names; a later
// building shadows an earlier one in the name index and Validate reports
// the clash.
func (p *Project) AddBuilding(b *Building) {
	p.Buildings = append(p.Buildings, b)
	if b.Name != "" {
		p.NameIndex[b.Name] = len(p.Buildings) - 1
	}
}

// Lookup returns the building with the given name, or nil.
func (p *Project) Lookup(name string) *Building {
	i, ok := p.NameIndex[name]
	if !ok {
		return nil
	}
	return p.Buildings[i]
}

// MustLookup returns the building with the given name, or panics.
func (p *Project) MustLookup(name string) *Building {
	b := p.Lookup(name)
	if b == nil {
		panic(fmt.Sprintf("plan: no building named %q", name))
	}
	return b
}

// Params resolves the effective parameters of b.
func (p *Project) Params(b *Building) floor.Params {
	return b.Overrides.Apply(p.Defaults)
}

// BuildingCount returns the number of buildings.
func (p *Project) BuildingCount() int {
	return len(p.Buildings)
}
