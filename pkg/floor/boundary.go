package floor

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
)

// StartHeightRule picks which selected face sets the start height when
// the boundary comes from a face selection.
type StartHeightRule int

const (
	HighestFace StartHeightRule = iota // max center Z among selected faces
	LowestFace                         // min center Z among selected faces
	LastFace                           // center Z of the last selected face, in adapter order
)

func (r StartHeightRule) String() string {
	switch r {
	case HighestFace:
		return "highest"
	case LowestFace:
		return "lowest"
	case LastFace:
		return "last"
	default:
		return fmt.Sprintf("StartHeightRule(%d)", int(r))
	}
}

// ParseStartHeightRule converts a rule name as printed by String.
func ParseStartHeightRule(s string) (StartHeightRule, error) {
	switch s {
	case "", "highest":
		return HighestFace, nil
	case "lowest":
		return LowestFace, nil
	case "last":
		return LastFace, nil
	}
	return 0, fmt.Errorf("floor: unknown start height rule %q, expected highest, lowest or last", s)
}

// Boundary is where extrusion starts.
type Boundary struct {
	Edges       []mesh.EdgeID
	StartHeight float64
	GroundFaces []mesh.FaceID // selected faces replaced by the extrusion
}

// ResolveBoundary returns edges unchanged when any are given. Otherwise the
// boundary of the selected face region is used, the selected faces become
// ground faces, and the start height is taken from them according to rule.
func ResolveBoundary(m mesh.Adapter, edges []mesh.EdgeID, rule StartHeightRule) (Boundary, error) {
	if len(edges) > 0 {
		return Boundary{Edges: edges}, nil
	}

	selected := m.SelectedFaces()
	if len(selected) == 0 {
		return Boundary{}, fmt.Errorf("%w: no edges given and no faces selected", ErrInvalidBoundary)
	}
	loop := m.BoundaryEdges(selected)
	if len(loop) == 0 {
		return Boundary{}, fmt.Errorf("%w: selection of %d faces has no boundary edges", ErrInvalidBoundary, len(selected))
	}

	start, err := startHeight(m, selected, rule)
	if err != nil {
		return Boundary{}, err
	}
	return Boundary{
		Edges:       loop,
		StartHeight: start,
		GroundFaces: selected,
	}, nil
}

func startHeight(m mesh.Adapter, faces []mesh.FaceID, rule StartHeightRule) (float64, error) {
	if rule == LastFace {
		c, err := m.FaceCenter(faces[len(faces)-1])
		if err != nil {
			return 0, err
		}
		return c.Z, nil
	}
	var z float64
	for i, f := range faces {
		c, err := m.FaceCenter(f)
		if err != nil {
			return 0, err
		}
		switch {
		case i == 0:
			z = c.Z
		case rule == HighestFace && c.Z > z:
			z = c.Z
		case rule == LowestFace && c.Z < z:
			z = c.Z
		}
	}
	return z, nil
}
