package floor

import (
	"fmt"

	"github.com/chazu/storey/pkg/mesh"
)

// Category is the semantic role a face is tagged with.
type Category int

const (
	Slabs Category = iota // horizontal separators between stories
	Walls                 // vertical body of a story
)

// Categories lists every category in tagging order.
var Categories = []Category{Slabs, Walls}

func (c Category) String() string {
	switch c {
	case Slabs:
		return "SLABS"
	case Walls:
		return "WALLS"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// FaceMap groups faces by category. It is the explicit output of a build;
// callers decide how to persist the tags.
type FaceMap map[Category][]mesh.FaceID

// Add tags faces with c, skipping faces already tagged with c.
func (fm FaceMap) Add(c Category, faces ...mesh.FaceID) {
	have := make(map[mesh.FaceID]bool, len(fm[c]))
	for _, f := range fm[c] {
		have[f] = true
	}
	for _, f := range faces {
		if have[f] {
			continue
		}
		have[f] = true
		fm[c] = append(fm[c], f)
	}
}

// Faces returns the faces tagged with c.
func (fm FaceMap) Faces(c Category) []mesh.FaceID {
	return fm[c]
}

// CategoryOf returns the first category, in Categories order, tagging f.
func (fm FaceMap) CategoryOf(f mesh.FaceID) (Category, bool) {
	for _, c := range Categories {
		for _, g := range fm[c] {
			if g == f {
				return c, true
			}
		}
	}
	return 0, false
}

// Index returns a face -> category lookup.
func (fm FaceMap) Index() map[mesh.FaceID]Category {
	idx := make(map[mesh.FaceID]Category)
	for i := len(Categories) - 1; i >= 0; i-- {
		c := Categories[i]
		for _, f := range fm[c] {
			idx[f] = c
		}
	}
	return idx
}
