// Package engine provides the Lisp evaluation engine for storey.
// It wraps zygomys in a sandboxed environment and produces a building
// project from user source code.
package engine

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/storey/pkg/plan"
	zygo "github.com/glycerine/zygomys/zygo"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of evaluated sources an Engine remembers.
const DefaultCacheSize = 64

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line     int
	Col      int
	Message  string
	Building string
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Project  *plan.Project
	Errors   []EvalError
	Warnings []EvalWarning
}

// cached is what the engine remembers per source digest. Fatal failures
// are never cached.
type cached struct {
	project *plan.Project
	errors  []EvalError
}

// Engine wraps the zygomys interpreter for building scripts.
// It is safe for concurrent use; each evaluation that misses the cache
// creates a fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	cache      *lru.Cache[[sha256.Size]byte, cached]
}

// NewEngine creates an Engine with a DefaultCacheSize result cache.
func NewEngine() *Engine {
	e, err := NewEngineWithCache(DefaultCacheSize)
	if err != nil {
		// Only a non-positive size makes lru.New fail.
		panic(err)
	}
	return e
}

// NewEngineWithCache creates an Engine remembering up to size results.
func NewEngineWithCache(size int) (*Engine, error) {
	c, err := lru.New[[sha256.Size]byte, cached](size)
	if err != nil {
		return nil, fmt.Errorf("engine: result cache: %w", err)
	}
	return &Engine{cache: c}, nil
}

// Evaluate takes Lisp source code and produces a new Project.
// Results are cached per source; a cached Project is shared between
// callers and must be treated as read-only.
//
// Return semantics:
//   - On success: returns project + nil errors + nil error
//   - On parse/eval failure: returns nil project + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*plan.Project, []EvalError, error) {
	key := sha256.Sum256([]byte(source))
	if hit, ok := e.cache.Get(key); ok {
		return hit.project, hit.errors, nil
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{project: p, errors: evalErrs, err: err}
	}()

	p, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation)
	if err == nil {
		e.cache.Add(key, cached{project: p, errors: evalErrs})
	}
	return p, evalErrs, err
}

// EvaluateResult is Evaluate with plan validation findings folded in as
// warnings and errors, for callers that want a single value.
func (e *Engine) EvaluateResult(source string) (EvalResult, error) {
	p, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	res := EvalResult{Project: p, Errors: evalErrs}
	if p == nil {
		return res, nil
	}
	v := plan.ValidateAll(p)
	for _, ve := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, Building: w.Building})
	}
	return res, nil
}

// CacheLen returns the number of cached results.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// Purge drops every cached result.
func (e *Engine) Purge() {
	e.cache.Purge()
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*plan.Project, []EvalError, error) {
	p := plan.New()

	// Empty source is a valid program that produces an empty project.
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
// The detail may span several lines when a builtin returned the error.
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
