package floor

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
)

// BufferInsetDepth is the depth of the first slab inset. It sits just
// above the usual vertex-merge distance (0.0001) so the ring survives
// merging, and it separates geometry later built on walls from geometry
// built on slabs. Do not make it configurable.
const BufferInsetDepth = 0.00011

// InsetBuffer insets slabs twice, first by BufferInsetDepth and then by
// outset, both against the normals and both on the original slab faces.
// It returns the slabs plus the ring faces of both insets.
func InsetBuffer(m mesh.Adapter, slabs []mesh.FaceID, outset float64) ([]mesh.FaceID, error) {
	buffer, err := m.InsetRegion(slabs, -BufferInsetDepth)
	if err != nil {
		return nil, fmt.Errorf("floor: buffer inset: %w", err)
	}
	outer, err := m.InsetRegion(slabs, -outset)
	if err != nil {
		return nil, fmt.Errorf("floor: outset inset: %w", err)
	}

	out := make([]mesh.FaceID, 0, len(slabs)+len(buffer.Faces)+len(outer.Faces))
	seen := make(map[mesh.FaceID]bool, cap(out))
	for _, group := range [][]mesh.FaceID{slabs, buffer.Faces, outer.Faces} {
		for _, f := range group {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}
