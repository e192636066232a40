package plan

import (
	"errors"
	"fmt"

	"github.com/chazu/storey/pkg/floor"
)

// ValidationSeverity indicates whether a validation finding blocks
// generation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks generation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Building string             // which building has the problem (empty if project-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Building == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] building %q: %s", e.Severity, e.Building, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Building string
	Message  string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the Tier 1 structural checks and returns every finding.
// An empty slice means the project can be generated. It never mutates p.
func Validate(p *Project) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNames(p)...)
	errs = append(errs, validateParams(p)...)
	errs = append(errs, validateFootprints(p)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric) and
// returns a ValidationResult with separated errors and warnings.
func ValidateAll(p *Project) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(p) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{Building: e.Building, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Warnings = append(result.Warnings, validateGeometry(p)...)
	return result
}

// ---------------------------------------------------------------------------
// Tier 1: structural validation
// ---------------------------------------------------------------------------

func validateNames(p *Project) []ValidationError {
	var errs []ValidationError
	if len(p.Buildings) == 0 {
		errs = append(errs, ValidationError{
			Message:  "project has no buildings",
			Severity: SeverityError,
		})
	}
	seen := make(map[string]bool)
	for i, b := range p.Buildings {
		if b.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("building #%d has no name", i+1),
				Severity: SeverityError,
			})
			continue
		}
		if seen[b.Name] {
			errs = append(errs, ValidationError{
				Building: b.Name,
				Message:  "duplicate building name",
				Severity: SeverityError,
			})
		}
		seen[b.Name] = true
	}
	return errs
}

func validateParams(p *Project) []ValidationError {
	var errs []ValidationError
	for _, b := range p.Buildings {
		err := p.Params(b).Validate()
		if err == nil {
			continue
		}
		var pe *floor.ParameterError
		msg := err.Error()
		if errors.As(err, &pe) {
			msg = fmt.Sprintf("%s is %g, %s", pe.Field, pe.Value, pe.Reason)
		}
		errs = append(errs, ValidationError{
			Building: b.Name,
			Message:  msg,
			Severity: SeverityError,
		})
	}
	return errs
}

func validateFootprints(p *Project) []ValidationError {
	var errs []ValidationError
	for _, b := range p.Buildings {
		fp := b.Footprint.Clean()
		switch {
		case len(fp) < 3:
			errs = append(errs, ValidationError{
				Building: b.Name,
				Message:  fmt.Sprintf("footprint has %d distinct points, need at least 3", len(fp)),
				Severity: SeverityError,
			})
		case fp.Area() < minFootprintArea:
			errs = append(errs, ValidationError{
				Building: b.Name,
				Message:  "footprint has zero area",
				Severity: SeverityError,
			})
		case fp.SelfIntersects():
			errs = append(errs, ValidationError{
				Building: b.Name,
				Message:  "footprint outline intersects itself",
				Severity: SeverityError,
			})
		}
		if len(b.Footprint.RepeatedPoints()) > 0 {
			errs = append(errs, ValidationError{
				Building: b.Name,
				Message:  fmt.Sprintf("footprint repeats points at %v, they are dropped", b.Footprint.RepeatedPoints()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// minFootprintArea is the smallest footprint area treated as non-degenerate.
const minFootprintArea = 1e-9

// ---------------------------------------------------------------------------
// Tier 2: geometric warnings
// ---------------------------------------------------------------------------

func validateGeometry(p *Project) []ValidationWarning {
	var warnings []ValidationWarning
	for _, b := range p.Buildings {
		fp := b.Footprint.Clean()
		if len(fp) < 3 {
			continue
		}
		if fp.IsClockwise() {
			warnings = append(warnings, ValidationWarning{
				Building: b.Name,
				Message:  "footprint winds clockwise, it is reversed before extrusion",
			})
		}
		params := p.Params(b)
		if shortest := fp.ShortestEdge(); params.SlabOutset > 0 && params.SlabOutset >= shortest/2 {
			warnings = append(warnings, ValidationWarning{
				Building: b.Name,
				Message: fmt.Sprintf("slab outset %g is at least half the shortest footprint edge %g, slab rings may overlap",
					params.SlabOutset, shortest),
			})
		}
	}
	return warnings
}
