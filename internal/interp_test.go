package internal

import (
	"fmt"
	"strings"
	"testing"
)

// capturingLogger collects everything print/println write, one entry per
// call, so tests can assert on REPL/script output without touching stdout.
type capturingLogger struct {
	lines []string
}

func (c *capturingLogger) Printf(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func newTestInterp(t *testing.T) (*Interpreter, *capturingLogger) {
	t.Helper()
	log := &capturingLogger{}
	return NewInterpreter(log), log
}

func runProgram(t *testing.T, interp *Interpreter, src string) {
	t.Helper()
	program, errs := ParseProgram(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("unexpected run error for %q: %v", src, err)
	}
}

func runProgramExpectErr(t *testing.T, interp *Interpreter, src string) error {
	t.Helper()
	program, errs := ParseProgram(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	err := interp.Run(program)
	if err == nil {
		t.Fatalf("expected a runtime/resolve error for %q, got none", src)
	}
	return err
}

func evalExpr(t *testing.T, interp *Interpreter, src string) Value {
	t.Helper()
	node, errs := ParseExp(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors for expression %q: %v", src, errs)
	}
	v, err := interp.EvalExp(node)
	if err != nil {
		t.Fatalf("unexpected eval error for %q: %v", src, err)
	}
	return v
}

// --- end-to-end scenarios ---

func TestScenarioArithmeticPrecedence(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `var a = 1; var b = 2; var result = a + b * 3;`)
	v := evalExpr(t, interp, "result")
	if v.Kind() != kInt || v.AsInt() != 7 {
		t.Fatalf("got %v, want int 7", v)
	}
}

func TestScenarioWhileLoopStringBuild(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `
		var s = "";
		var i = 0;
		while (i < 3) { s = s + "x"; i = i + 1; }
	`)
	v := evalExpr(t, interp, "s")
	if v.Kind() != kString || v.AsString() != "xxx" {
		t.Fatalf("got %v, want string \"xxx\"", v)
	}
}

func TestScenarioClosureCounterCapturesByReference(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `
		var make = fn(n) { return fn() { n = n + 1; return n; }; };
		var c = make(10);
	`)
	evalExpr(t, interp, "c()")
	evalExpr(t, interp, "c()")
	v := evalExpr(t, interp, "c()")
	if v.Kind() != kInt || v.AsInt() != 13 {
		t.Fatalf("got %v, want int 13", v)
	}
}

func TestScenarioListSubscriptAssignment(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `
		var xs = [1, 2, 3];
		xs[1] = xs[0] + xs[2];
	`)
	v := evalExpr(t, interp, "xs")
	if v.String() != "[1, 4, 3]" {
		t.Fatalf("got %s, want [1, 4, 3]", v.String())
	}
}

func TestScenarioStringSubscriptIsRuneNotByte(t *testing.T) {
	interp, _ := newTestInterp(t)
	v := evalExpr(t, interp, `"café"[3]`)
	if v.Kind() != kString || v.AsString() != "é" {
		t.Fatalf(`got %v, want "é" ("café"[3] must index by code point, not UTF-8 byte)`, v)
	}
}

func TestScenarioRecursiveFactorial(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `
		var fact = fn(n) { if (n <= 1) { return 1; } return n * fact(n - 1); };
	`)
	v := evalExpr(t, interp, "fact(6)")
	if v.Kind() != kInt || v.AsInt() != 720 {
		t.Fatalf("got %v, want int 720", v)
	}
}

func TestScenarioErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want func(error) bool
	}{
		{"null plus int", `var a; a + 1;`, func(e error) bool { _, ok := e.(*TypeError); return ok }},
		{"division by zero", `var x = 1 / 0;`, func(e error) bool { _, ok := e.(*ZeroDivisionError); return ok }},
		{"arity mismatch", `fn(){}(1);`, func(e error) bool { _, ok := e.(*ArgumentError); return ok }},
		{"undeclared name", `var y = z;`, func(e error) bool {
			re, ok := e.(*ResolveError)
			return ok && re.Kind == NoSuchName
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp, _ := newTestInterp(t)
			err := runProgramExpectErr(t, interp, tc.src)
			if !tc.want(err) {
				t.Fatalf("got error %v (%T), did not match expected kind", err, err)
			}
		})
	}
}

// --- scoping laws ---

func TestLawLexicalNotDynamicScoping(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `
		var x = "outer";
		var readX = fn() { return x; };
		var callFromInner = fn() {
			var x = "inner";
			return readX();
		};
	`)
	v := evalExpr(t, interp, "callFromInner()")
	if v.AsString() != "outer" {
		t.Fatalf("got %q, want %q (lexical scoping)", v.AsString(), "outer")
	}
}

// --- evaluator invariants ---

func TestInvariantShortCircuitAnd(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `var tick = counter();`)
	// false && tick() must never call tick, so tick() afterwards still
	// starts its own count at 1 the first time it is actually invoked.
	v := evalExpr(t, interp, "false && tick()")
	if v.Kind() != kBool || v.AsBool() != false {
		t.Fatalf("got %v, want false", v)
	}
	first := evalExpr(t, interp, "tick()")
	if first.AsInt() != 1 {
		t.Fatalf("tick() was invoked during the short-circuited &&: got %v, want 1", first.AsInt())
	}
}

func TestInvariantShortCircuitOr(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `var tick = counter();`)
	v := evalExpr(t, interp, "true || tick()")
	if v.Kind() != kBool || v.AsBool() != true {
		t.Fatalf("got %v, want true", v)
	}
	first := evalExpr(t, interp, "tick()")
	if first.AsInt() != 1 {
		t.Fatalf("tick() was invoked during the short-circuited ||: got %v, want 1", first.AsInt())
	}
}

func TestInvariantAndOrReturnLastOperand(t *testing.T) {
	interp, _ := newTestInterp(t)
	v := evalExpr(t, interp, `0 || "fallback"`)
	if v.Kind() != kString || v.AsString() != "fallback" {
		t.Fatalf("got %v, want the string \"fallback\" (last evaluated operand)", v)
	}
}

// TestInvariantStackDepthAfterStatement checks that a statement leaves no
// residue on either stack.
func TestInvariantStackDepthAfterStatement(t *testing.T) {
	interp, _ := newTestInterp(t)
	program, errs := ParseProgram(`var a = 1; a = a + 1;`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(interp.values) != 0 {
		t.Errorf("value stack not empty after statements: %d entries", len(interp.values))
	}
	if len(interp.frames) != 1 {
		t.Errorf("frame stack depth changed across Run: got %d, want 1", len(interp.frames))
	}
}

// TestInvariantStackDepthAfterExpression checks that an expression leaves
// exactly one net value relative to its entry depth.
func TestInvariantStackDepthAfterExpression(t *testing.T) {
	interp, _ := newTestInterp(t)
	runProgram(t, interp, `var a = 1; var b = 2;`)
	node, errs := ParseExp("a + b * (a - b)")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := resolveIncomplete(interp.program, node); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	depth := len(interp.values)
	v := interp.evalExp(node)
	if len(interp.values) != depth+1 {
		t.Fatalf("value stack depth after expression: got %d, want %d", len(interp.values), depth+1)
	}
	if v.AsInt() != 1+2*(1-2) {
		t.Fatalf("got %v, want %d", v, 1+2*(1-2))
	}
}

func TestBuiltinPrintlnWritesToLogger(t *testing.T) {
	interp, log := newTestInterp(t)
	runProgram(t, interp, `println("hello", "world");`)
	if len(log.lines) != 1 || !strings.HasSuffix(log.lines[0], "\n") {
		t.Fatalf("got %v", log.lines)
	}
	if !strings.HasPrefix(log.lines[0], "hello world") {
		t.Fatalf("got %q, want prefix %q", log.lines[0], "hello world")
	}
}
