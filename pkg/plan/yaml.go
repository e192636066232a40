package plan

import (
	"fmt"
	"os"

	"github.com/chazu/storey/pkg/floor"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"gopkg.in/yaml.v3"
)

// projectFile is the on-disk layout of a YAML project:
//
//	defaults:
//	  floor_count: 2
//	  floor_height: 3.0
//	buildings:
//	  - name: tower
//	    footprint: [[0, 0], [10, 0], [10, 8], [0, 8]]
//	    floor_count: 5
type projectFile struct {
	Defaults  ParamOverrides `yaml:"defaults"`
	Buildings []buildingFile `yaml:"buildings"`
}

type buildingFile struct {
	Name          string         `yaml:"name"`
	Footprint     [][]float64    `yaml:"footprint"`
	Elevation     float64        `yaml:"elevation"`
	FromSelection bool           `yaml:"from_selection"`
	Overrides     ParamOverrides `yaml:",inline"`
}

// ParseYAML decodes a YAML project. Defaults not given in the document
// keep floor.DefaultParams values.
func ParseYAML(data []byte) (*Project, error) {
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("plan: parse yaml: %w", err)
	}

	p := New()
	p.Defaults = pf.Defaults.Apply(floor.DefaultParams())
	for i, bf := range pf.Buildings {
		fp := make(Footprint, 0, len(bf.Footprint))
		for j, pt := range bf.Footprint {
			if len(pt) != 2 {
				return nil, fmt.Errorf("plan: building #%d (%s): footprint point %d has %d coordinates, want 2",
					i+1, bf.Name, j, len(pt))
			}
			fp = append(fp, v2.Vec{X: pt[0], Y: pt[1]})
		}
		p.AddBuilding(&Building{
			Name:          bf.Name,
			Footprint:     fp,
			Elevation:     bf.Elevation,
			FromSelection: bf.FromSelection,
			Overrides:     bf.Overrides,
		})
	}
	return p, nil
}

// LoadFile reads and decodes a YAML project file.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	return ParseYAML(data)
}

// MarshalYAML encodes p in the project file layout. Resolved defaults are
// written out in full.
func (p *Project) MarshalYAML() (interface{}, error) {
	d := p.Defaults
	pf := projectFile{
		Defaults: ParamOverrides{
			FloorCount:    &d.FloorCount,
			FloorHeight:   &d.FloorHeight,
			SlabThickness: &d.SlabThickness,
			SlabOutset:    &d.SlabOutset,
		},
	}
	for _, b := range p.Buildings {
		bf := buildingFile{
			Name:          b.Name,
			Elevation:     b.Elevation,
			FromSelection: b.FromSelection,
			Overrides:     b.Overrides,
		}
		for _, pt := range b.Footprint {
			bf.Footprint = append(bf.Footprint, []float64{pt.X, pt.Y})
		}
		pf.Buildings = append(pf.Buildings, bf)
	}
	return pf, nil
}
