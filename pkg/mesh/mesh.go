// Package mesh defines the polygon mesh adapter used by the floor
// generator. Implementations (polymesh, or a binding to a host modeling
// application) provide topology operations behind this interface so the
// generation pipeline never depends on a concrete mesh representation.
package mesh

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertID is a stable handle to a mesh vertex.
type VertID int

// EdgeID is a stable handle to a mesh edge.
type EdgeID int

// FaceID is a stable handle to a mesh face.
type FaceID int

// ErrDegenerateTopology is returned when an operation cannot be applied
// because the input geometry is degenerate or non-manifold.
var ErrDegenerateTopology = errors.New("degenerate topology")

// ErrUnknownElement is returned for IDs that do not refer to a live element.
var ErrUnknownElement = errors.New("unknown mesh element")

// DeleteContext selects what else is removed along with the given faces.
type DeleteContext int

const (
	DeleteFaces     DeleteContext = iota // faces plus edges and verts left unused
	DeleteFacesOnly                      // faces only, edges and verts stay
)

func (c DeleteContext) String() string {
	switch c {
	case DeleteFaces:
		return "faces"
	case DeleteFacesOnly:
		return "faces-only"
	default:
		return fmt.Sprintf("DeleteContext(%d)", int(c))
	}
}

// ExtrudeResult is the geometry created by an edge-only extrusion.
type ExtrudeResult struct {
	Verts     []VertID // duplicated vertices, to be translated by the caller
	Edges     []EdgeID // duplicated edges forming the new extrusion front
	SideEdges []EdgeID // edges joining each original vertex to its duplicate
	Faces     []FaceID // one quad per extruded edge
}

// InsetResult is the geometry created by a region inset.
type InsetResult struct {
	Faces []FaceID // ring faces bridging the region boundary
}

// CreateResult is the outcome of a contextual create. Exactly one of
// Face (when HasFace) or Edges is meaningful.
type CreateResult struct {
	Face    FaceID
	HasFace bool
	Edges   []EdgeID // wire edges left as-is when no face could be made
}

// Adapter is the set of mesh operations the floor generator relies on.
type Adapter interface {
	// ExtrudeEdgesOnly duplicates the given edges and bridges each original
	// edge to its duplicate with a new face. No capping is performed.
	ExtrudeEdgesOnly(edges []EdgeID) (ExtrudeResult, error)

	// Translate moves the given vertices by offset.
	Translate(verts []VertID, offset v3.Vec) error

	// InsetRegion offsets the face region along its normals by depth
	// (negative depth moves against the normals) and bridges the region
	// boundary to its original position with new faces.
	InsetRegion(faces []FaceID, depth float64) (InsetResult, error)

	// RecalcNormals makes the winding of the given faces consistent and
	// outward facing.
	RecalcNormals(faces []FaceID) error

	// Delete removes faces according to ctx.
	Delete(faces []FaceID, ctx DeleteContext) error

	// ContextualCreate makes a face from a closed edge loop, or leaves the
	// edges as wire when they do not bound a polygon.
	ContextualCreate(edges []EdgeID) (CreateResult, error)

	// Faces lists live faces in ascending ID order.
	Faces() []FaceID

	// FaceCenter returns the median center of a face.
	FaceCenter(f FaceID) (v3.Vec, error)

	// SelectedFaces lists selected faces in ascending ID order.
	SelectedFaces() []FaceID

	// BoundaryEdges returns the edges bordering exactly one face of the region.
	BoundaryEdges(faces []FaceID) []EdgeID
}
