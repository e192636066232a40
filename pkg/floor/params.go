// Package floor turns a floorplan boundary into a stacked multi-story
// mesh. A boundary edge loop is extruded upward by alternating slab and
// floor offsets, the resulting faces are classified into slabs and walls
// by height, and slab faces get a buffer inset separating them from walls.
//
// All operations act on a mesh.Adapter supplied by the caller and mutate
// it in place. Nothing is rolled back on failure.
package floor

import (
	"errors"
	"fmt"
)

// ErrInvalidBoundary is returned when neither edges nor a face selection
// provide a boundary to extrude.
var ErrInvalidBoundary = errors.New("floor: no boundary available")

// Params are the numeric inputs of a floor build.
type Params struct {
	FloorCount    int     `yaml:"floor_count" json:"floor_count"`       // number of stories, > 0
	FloorHeight   float64 `yaml:"floor_height" json:"floor_height"`     // wall span per story, > 0
	SlabThickness float64 `yaml:"slab_thickness" json:"slab_thickness"` // slab span per story, >= 0
	SlabOutset    float64 `yaml:"slab_outset" json:"slab_outset"`       // slab inset depth, >= 0
}

// DefaultParams returns the parameters used when a caller sets none.
func DefaultParams() Params {
	return Params{
		FloorCount:    1,
		FloorHeight:   2,
		SlabThickness: 0.2,
		SlabOutset:    0.1,
	}
}

// ParameterError reports a parameter outside its allowed range.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("floor: invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every parameter and returns the first violation.
func (p Params) Validate() error {
	switch {
	case p.FloorCount <= 0:
		return &ParameterError{Field: "floor_count", Value: float64(p.FloorCount), Reason: "must be positive"}
	case p.FloorHeight <= 0:
		return &ParameterError{Field: "floor_height", Value: p.FloorHeight, Reason: "must be positive"}
	case p.SlabThickness < 0:
		return &ParameterError{Field: "slab_thickness", Value: p.SlabThickness, Reason: "must not be negative"}
	case p.SlabOutset < 0:
		return &ParameterError{Field: "slab_outset", Value: p.SlabOutset, Reason: "must not be negative"}
	}
	return nil
}

// StoryHeight is the vertical span of one story, slab included.
func (p Params) StoryHeight() float64 {
	return p.FloorHeight + p.SlabThickness
}

// TotalHeight is the height of the extruded stack above its start.
func (p Params) TotalHeight() float64 {
	return float64(p.FloorCount) * p.StoryHeight()
}
