package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateEmptyString(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		eng := NewEngine()

		p, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if p == nil {
			t.Fatal("expected non-nil project")
		}
		if p.BuildingCount() != 0 {
			t.Errorf("expected empty project, got %d buildings", p.BuildingCount())
		}
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine()

	// Plain arithmetic is valid and declares nothing.
	p, evalErrs, err := eng.Evaluate("(def x 10)\n(def y 20)\n(+ x y)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if p == nil || p.BuildingCount() != 0 {
		t.Fatalf("expected empty project, got %+v", p)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil project on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil project on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateCachesResults(t *testing.T) {
	eng := NewEngine()
	src := `(building "a" :footprint (rect 4 4))`

	first, _, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	second, _, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if first != second {
		t.Error("expected the cached project to be returned")
	}
	if eng.CacheLen() != 1 {
		t.Errorf("CacheLen = %d, want 1", eng.CacheLen())
	}

	// Eval errors are cached as well.
	for i := 0; i < 2; i++ {
		_, evalErrs, err := eng.Evaluate("(+ 1 2")
		if err != nil || len(evalErrs) == 0 {
			t.Fatalf("iteration %d: evalErrs=%v err=%v", i, evalErrs, err)
		}
	}
	if eng.CacheLen() != 2 {
		t.Errorf("CacheLen = %d, want 2", eng.CacheLen())
	}

	eng.Purge()
	if eng.CacheLen() != 0 {
		t.Errorf("CacheLen after Purge = %d", eng.CacheLen())
	}
	third, _, _ := eng.Evaluate(src)
	if third == first {
		t.Error("expected a fresh project after Purge")
	}
}

func TestEvaluateCacheEvicts(t *testing.T) {
	eng, err := NewEngineWithCache(2)
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range []string{"(+ 1 1)", "(+ 1 2)", "(+ 1 3)"} {
		if _, _, err := eng.Evaluate(src); err != nil {
			t.Fatal(err)
		}
	}
	if eng.CacheLen() != 2 {
		t.Errorf("CacheLen = %d, want 2", eng.CacheLen())
	}

	if _, err := NewEngineWithCache(0); err == nil {
		t.Error("expected error for zero cache size")
	}
}

func TestEvaluateResultFoldsValidation(t *testing.T) {
	eng := NewEngine()

	res, err := eng.EvaluateResult(`
(building "tower" :footprint (rect 10 8))
(building "tower" :footprint (footprint (vec2 0 4) (vec2 4 4) (vec2 4 0) (vec2 0 0)))
`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if res.Project == nil {
		t.Fatal("expected a project")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "duplicate") {
		t.Errorf("Errors = %v, want one duplicate name error", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "clockwise") {
		t.Errorf("Warnings = %+v, want one clockwise warning", res.Warnings)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Exercise the timeout plumbing directly with a channel that never sends.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "short line format",
			msg:      "line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
