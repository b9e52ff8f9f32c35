package internal

import "fmt"

// InternalError marks a condition the resolver should have made
// impossible to reach at runtime (e.g. a return escaping the program's
// top level uncaught).
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return e.Msg }

// Interpreter is the tree-walking evaluator. It owns the allocator, the
// persistent program block/root frame the REPL entry points mutate, and
// the two explicit stacks (frames and values) the design calls for.
type Interpreter struct {
	alloc   *Allocator
	program *Block
	root    *Object // root frame, kind objFrame, parent nil

	frames []*Object // frame stack: the dynamic call chain
	values []Value   // value stack: the "result register"

	builtinOrder []string
	out          Logger
}

// Logger is the narrow slice of *logrus.Logger the evaluator depends on,
// so tests can supply a silent stand-in without importing logrus.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NewInterpreter builds an interpreter with an empty, unresolved program
// block and every built-in already declared as a program-scope local, so
// user code can shadow a built-in with an ordinary `var` the same way it
// would shadow any other name.
func NewInterpreter(out Logger) *Interpreter {
	in := &Interpreter{
		alloc:   NewAllocator(),
		program: &Block{IsProgram: true},
		out:     out,
	}
	in.program.Attr.nameToLocal = make(map[string]int)
	for _, b := range standardBuiltins() {
		in.declareBuiltinLocal(b.name, b.fn)
	}
	in.root = in.alloc.NewFrame(nil, in.program, len(in.program.Attr.LocalInfo))
	for i, name := range in.builtinOrder {
		fn := lookupBuiltin(name)
		in.root.SetVar(i, BuiltinVal(in.alloc.NewBuiltin(name, fn)))
	}
	in.frames = append(in.frames, in.root)
	return in
}

func (in *Interpreter) declareBuiltinLocal(name string, fn BuiltinFn) {
	idx := len(in.program.Attr.LocalInfo)
	in.program.Attr.nameToLocal[name] = idx
	in.program.Attr.LocalInfo = append(in.program.Attr.LocalInfo, VarInfo{Name: name})
	in.builtinOrder = append(in.builtinOrder, name)
}

func (in *Interpreter) currentFrame() *Object { return in.frames[len(in.frames)-1] }

func (in *Interpreter) pushValue(v Value) { in.values = append(in.values, v) }

func (in *Interpreter) popValue() Value {
	v := in.values[len(in.values)-1]
	in.values = in.values[:len(in.values)-1]
	return v
}

// Roots returns the collector's GC roots: the frame stack, the value
// stack, the root frame, and the builtins table. The root frame is
// reachable from the frame stack anyway (frame 0 is always the root frame)
// but is listed explicitly here to document the contract; the builtins are
// not listed separately, since they are reached through the root frame's
// slots.
func (in *Interpreter) Roots() []*Object {
	roots := make([]*Object, 0, len(in.frames)+len(in.values)+1)
	roots = append(roots, in.frames...)
	roots = append(roots, in.root)
	for _, v := range in.values {
		if o := v.Object(); o != nil {
			roots = append(roots, o)
		}
	}
	return roots
}

// Collect forces a garbage collection pass. Only safe to call between
// top-level statements, never mid-expression, since it walks the value
// stack as roots and an expression mid-evaluation may hold references
// nowhere else recorded; the driver's :gc command is the only caller.
func (in *Interpreter) Collect() Stats {
	in.alloc.Collect(in.Roots())
	return in.alloc.StatsSnapshot()
}

// ---- top-level entry points ----

// Run resolves and evaluates a freshly-parsed program, once, from a clean
// root frame.
func (in *Interpreter) Run(program *Block) (err error) {
	// Splice the caller's parsed statements into the persistent program
	// block that already carries the built-in declarations, so the
	// resolver sees built-ins as ordinary locals.
	in.program.Stmts = append(in.program.Stmts, program.Stmts...)

	defer in.recoverTopLevel(&err)

	if err := resolveNames(in.program); err != nil {
		return err
	}
	in.growRootFrame()

	for _, stmt := range in.program.Stmts {
		in.execStmt(stmt)
	}
	return nil
}

// growRootFrame extends the root frame with Null-initialised slots for any
// locals the resolver added since the frame was last sized (used both by
// Run and by the REPL entry points below).
func (in *Interpreter) growRootFrame() {
	want := len(in.program.Attr.LocalInfo)
	for len(in.root.frameVars) < want {
		in.root.frameVars = append(in.root.frameVars, Null())
	}
}

// EvalDeclList adds declarations to the program block and evaluates their
// initialisers, for a REPL introducing new globals one line at a time.
func (in *Interpreter) EvalDeclList(decls *DeclareList) (err error) {
	defer in.recoverTopLevel(&err)

	if resErr := resolveIncomplete(in.program, decls); resErr != nil {
		return resErr
	}
	in.growRootFrame()
	in.execStmt(decls)
	return nil
}

// EvalStmt resolves node in program scope and executes it as one statement,
// for a REPL line that isn't a declaration.
func (in *Interpreter) EvalStmt(node Node) (err error) {
	defer in.recoverTopLevel(&err)

	if resErr := resolveIncomplete(in.program, node); resErr != nil {
		return resErr
	}
	in.growRootFrame()
	in.execStmt(node)
	return nil
}

// EvalExp resolves and evaluates one expression, returning its value —
// the REPL's fallback for a line that is neither a declaration nor a
// statement.
func (in *Interpreter) EvalExp(node Node) (v Value, err error) {
	defer in.recoverTopLevel(&err)

	if resErr := resolveIncomplete(in.program, node); resErr != nil {
		return Value{}, resErr
	}
	in.growRootFrame()
	depth := len(in.values)
	v = in.evalExp(node)
	in.values = in.values[:depth]
	return v, nil
}

// recoverTopLevel converts a panic into a returned error: runtime errors
// propagate out of the current top-level call as ordinary errors; a bare
// returnSignal escaping the program top level is an internal bug; other
// panics are re-raised.
func (in *Interpreter) recoverTopLevel(errOut *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case *TypeError, *ZeroDivisionError, *IndexError, *ArgumentError, *ResolveError:
		*errOut = e.(error)
	case returnSignal:
		*errOut = &InternalError{Msg: "return escaped the program top level"}
	case breakSignal, continueSignal:
		*errOut = &InternalError{Msg: "break/continue escaped its enclosing loop"}
	default:
		panic(r)
	}
	if in.out != nil {
		in.out.Printf("error: %v", *errOut)
	}
	// keep the interpreter usable after a reported error: undo whatever
	// the failed statement pushed onto the value stack.
	in.values = in.values[:0]
}

// ---- statement execution ----

// evalAndPop evaluates node for its value and immediately removes the
// resulting entry from the value stack. dispatchExp's own sub-evaluations
// don't need this — an outer evalExp trims them away implicitly (see its
// doc comment) — but a statement is never itself wrapped in an evalExp, so
// anywhere execStmt reads an expression's value it must discard the pushed
// entry explicitly: a statement should leave no residue on the value stack.
func (in *Interpreter) evalAndPop(node Node) Value {
	v := in.evalExp(node)
	in.popValue()
	return v
}

func (in *Interpreter) execStmt(node Node) {
	switch n := node.(type) {
	case *Block:
		in.execBlock(n, in.currentFrame())
	case *DeclareList:
		for i, pair := range n.Decls {
			var v Value = Null()
			if pair.Initial != nil {
				v = in.evalAndPop(pair.Initial)
			}
			in.currentFrame().SetVar(n.Attr.StartIndex+i, v)
		}
	case *Condition:
		if in.evalAndPop(n.Cond).Truthy() {
			in.execBlock(n.ThenBlock, in.currentFrame())
		} else if n.ElseBlock != nil {
			in.execStmt(n.ElseBlock)
		}
	case *While:
		for in.evalAndPop(n.Cond).Truthy() {
			if catchLoopSignals(func() { in.execBlock(n.Block, in.currentFrame()) }) {
				break
			}
		}
	case *Return:
		var v Value = Null()
		if n.Value != nil {
			v = in.evalAndPop(n.Value)
		}
		panic(returnSignal{value: v})
	case *Break:
		panic(breakSignal{})
	case *Continue:
		panic(continueSignal{})
	case *ExpStmt:
		in.evalAndPop(n.Value)
	case *Empty:
		// no-op
	default:
		panic(&InternalError{Msg: fmt.Sprintf("execStmt: unhandled node %T", node)})
	}
}

// execBlock enters block with parentFrame as its lexical parent, pushes a
// fresh frame, executes every statement, and pops on any exit path —
// normal, or via panic (break/continue/return/runtime error) — so the
// frame stack never leaks an entry when a statement unwinds abnormally.
func (in *Interpreter) execBlock(block *Block, parentFrame *Object) {
	frame := in.alloc.NewFrame(parentFrame, block, len(block.Attr.LocalInfo))
	in.frames = append(in.frames, frame)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	for _, stmt := range block.Stmts {
		in.execStmt(stmt)
	}
}

// ---- expression evaluation ----

// evalExp evaluates node and guarantees exactly one net push onto the
// value stack, regardless of how many intermediate sub-expressions
// dispatchExp evaluates along the way: each nested evalExp call leaves one
// residual value below the final result, and this frame discards
// everything past its own entry depth before pushing the answer.
func (in *Interpreter) evalExp(node Node) Value {
	depth := len(in.values)
	v := in.dispatchExp(node)
	in.values = in.values[:depth]
	in.pushValue(v)
	return v
}

func (in *Interpreter) dispatchExp(node Node) Value {
	switch n := node.(type) {
	case *NullLit:
		return Null()
	case *BoolLit:
		return BoolVal(n.Value)
	case *IntLit:
		return IntVal(n.Value)
	case *FloatLit:
		return FloatVal(n.Value)
	case *StringLit:
		return StringVal(n.Value)
	case *List:
		items := make([]Value, len(n.Items))
		for i, item := range n.Items {
			items[i] = in.evalExp(item)
		}
		return ListVal(in.alloc.NewList(items))
	case *Var:
		return in.readVar(n)
	case *Func:
		return FuncVal(in.alloc.NewFunc(n, in.currentFrame()))
	case *Op:
		return in.evalOp(n)
	default:
		panic(&InternalError{Msg: fmt.Sprintf("evalExp: unhandled node %T", node)})
	}
}

// readVar reads a variable through its resolved slot: a local index into
// the current frame, or a captured index into an ancestor frame.
func (in *Interpreter) readVar(v *Var) Value {
	if v.Attr.IsLocal {
		return in.currentFrame().GetVar(v.Attr.Index)
	}
	frame, slot := in.resolveNonlocalFrame(v)
	return frame.GetVar(slot)
}

// resolveNonlocalFrame walks the current frame's parent chain until it
// reaches a frame whose block is the nonlocal's target block. The walk
// terminates because resolution guarantees the target is a strict ancestor
// block, and lexical parent frames mirror block ancestry.
func (in *Interpreter) resolveNonlocalFrame(v *Var) (*Object, int) {
	owner := in.ownerBlockOf(v)
	info := owner.Attr.NonlocalIndexes[v.Attr.Index]
	frame := in.currentFrame()
	for frame != nil && frame.Block() != info.Target {
		frame = frame.Parent()
	}
	if frame == nil {
		panic(&InternalError{Msg: "nonlocal walk failed to find target frame"})
	}
	return frame, info.Index
}

// ownerBlockOf returns the block a variable reference belongs to, which is
// always the current frame's block at the moment the reference executes.
func (in *Interpreter) ownerBlockOf(v *Var) *Block {
	return in.currentFrame().Block()
}
