// Command storey turns floorplan footprints into multi-story building
// meshes. It reads a building script or a YAML project and writes one
// binary STL per building and part.
//
//	storey -script examples/tower.lisp -out out/
//	storey -project examples/site.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/storey/pkg/config"
	"github.com/chazu/storey/pkg/floor"
	"github.com/chazu/storey/pkg/plan"
	"github.com/chazu/storey/pkg/tessellate"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default $STOREY_CONFIG)")
	script := flag.String("script", "", "building script to evaluate")
	project := flag.String("project", "", "YAML project file")
	out := flag.String("out", "", "output directory for STL files")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *script != "" {
		cfg.Script, cfg.Project = *script, ""
	}
	if *project != "" {
		cfg.Project, cfg.Script = *project, ""
	}
	if *out != "" {
		cfg.OutDir = *out
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	app, err := NewAppFromConfig(cfg)
	if err != nil {
		return err
	}

	var result EvalResult
	switch {
	case cfg.Script != "":
		src, err := os.ReadFile(cfg.Script)
		if err != nil {
			return err
		}
		result = app.Evaluate(string(src))
	case cfg.Project != "":
		p, err := plan.LoadFile(cfg.Project)
		if err != nil {
			return err
		}
		result = app.EvaluateProject(p)
	default:
		return errors.New("nothing to build: set -script or -project")
	}

	for _, w := range result.Warnings {
		log.Printf("warning: %s", describe(w))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Printf("error: %s", describe(e))
		}
		return fmt.Errorf("%d errors", len(result.Errors))
	}

	paths, err := writeModels(cfg.OutDir, result.Models)
	if err != nil {
		return err
	}
	log.Printf("Generated %d buildings, wrote %d files to %s", len(result.Models), len(paths), cfg.OutDir)
	return nil
}

func describe(e EvalErrorData) string {
	msg := e.Message
	if e.Building != "" && !strings.Contains(msg, e.Building) {
		msg = fmt.Sprintf("building %q: %s", e.Building, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// writeModels writes <dir>/<building>_<part>.stl for every part and
// returns the written paths.
func writeModels(dir string, models []*tessellate.Model) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, m := range models {
		for _, part := range m.Parts {
			path := filepath.Join(dir, fileName(part.PartName)+".stl")
			if err := tessellate.SaveSTL(path, part); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		log.Printf("%s: %d slabs, %d walls, %d unmatched, start height %g",
			m.Building.Name,
			len(m.Result.FaceMap.Faces(floor.Slabs)),
			len(m.Result.FaceMap.Faces(floor.Walls)),
			len(m.Result.Unmatched),
			m.Result.StartHeight)
	}
	return paths, nil
}

// fileName turns a part name into a safe file name.
func fileName(partName string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, partName)
}
