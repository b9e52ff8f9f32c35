package internal

import "github.com/labstack/gommon/bytes"

// objKind tags the handful of heap-object shapes the allocator manages:
// Frame, List, Func (closure), and Builtin. A single tagged struct with a
// kind field stands in for a class hierarchy — there's no per-kind virtual
// dispatch to preserve, so one struct with an EachRef switch is enough.
type objKind uint8

const (
	objList objKind = iota
	objFunc
	objFrame
	objBuiltin
)

// Object is a single heap allocation owned by the Allocator.
type Object struct {
	kind   objKind
	marked bool
	next   *Object // allocator's intrusive list of all live allocations

	// objList
	list []Value

	// objFunc: a closure bundling a function AST node with the frame it
	// was defined in — its captured parent frame.
	funcNode *Func
	closure  *Object // *Object of kind objFrame: the frame the literal was evaluated in

	// objFrame
	frameParent *Object // *Object of kind objFrame, or nil at program root
	frameBlock  *Block
	frameVars   []Value

	// objBuiltin
	builtinName string
	builtinFn   BuiltinFn
}

// BuiltinFn is the signature every host-provided function implements.
type BuiltinFn func(interp *Interpreter, args []Value) (Value, error)

// EachRef visits every Object this one directly references, driving the
// tracing collector's reachability walk.
func (o *Object) EachRef(visit func(*Object)) {
	switch o.kind {
	case objList:
		for _, v := range o.list {
			if ref := v.Object(); ref != nil {
				visit(ref)
			}
		}
	case objFunc:
		if o.closure != nil {
			visit(o.closure)
		}
	case objFrame:
		if o.frameParent != nil {
			visit(o.frameParent)
		}
		for _, v := range o.frameVars {
			if ref := v.Object(); ref != nil {
				visit(ref)
			}
		}
	case objBuiltin:
		// scalars and native funcs expose no references
	}
}

// --- Frame accessors: an Object of kind objFrame is a lexical frame. ---

func (o *Object) Parent() *Object { return o.frameParent }
func (o *Object) Block() *Block   { return o.frameBlock }

func (o *Object) GetVar(idx int) Value  { return o.frameVars[idx] }
func (o *Object) SetVar(idx int, v Value) { o.frameVars[idx] = v }

// Allocator is a tracing mark-sweep collector over Objects. Roots are
// supplied by the evaluator at collection time: the frame stack, the value
// stack, the program's root frame, and the builtins table.
type Allocator struct {
	all   *Object // head of the intrusive live-object list
	count int
	bytes int64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) track(o *Object) *Object {
	o.next = a.all
	a.all = o
	a.count++
	a.bytes += objSize(o)
	return o
}

func (a *Allocator) NewList(items []Value) *Object {
	return a.track(&Object{kind: objList, list: items})
}

func (a *Allocator) NewFunc(node *Func, closure *Object) *Object {
	return a.track(&Object{kind: objFunc, funcNode: node, closure: closure})
}

func (a *Allocator) NewFrame(parent *Object, block *Block, nlocals int) *Object {
	vars := make([]Value, nlocals)
	for i := range vars {
		vars[i] = Null()
	}
	return a.track(&Object{kind: objFrame, frameParent: parent, frameBlock: block, frameVars: vars})
}

func (a *Allocator) NewBuiltin(name string, fn BuiltinFn) *Object {
	return a.track(&Object{kind: objBuiltin, builtinName: name, builtinFn: fn})
}

// objSize is a rough per-kind footprint used only for StatsSnapshot() reporting;
// it need not be exact, only monotonic in what the object actually holds.
func objSize(o *Object) int64 {
	const wordSize = 8
	switch o.kind {
	case objList:
		return int64(24 + len(o.list)*wordSize)
	case objFrame:
		return int64(24 + len(o.frameVars)*wordSize)
	default:
		return 32
	}
}

// Collect runs a full mark-sweep pass. It is only safe to call between
// statement evaluations, never mid-expression: an expression under
// evaluation can hold live references that exist only on the Go call
// stack, outside the roots this pass walks.
func (a *Allocator) Collect(roots []*Object) {
	for r := range roots {
		markObject(roots[r])
	}
	var kept *Object
	survivors, survivorBytes := 0, int64(0)
	for o := a.all; o != nil; {
		next := o.next
		if o.marked {
			o.marked = false
			o.next = kept
			kept = o
			survivors++
			survivorBytes += objSize(o)
		}
		o = next
	}
	a.all = kept
	a.count = survivors
	a.bytes = survivorBytes
}

// markObject marks o and everything reachable from it, tolerating cycles
// via the marked flag: a reference cycle between closures and the frames
// they capture is ordinary and must not send this into infinite recursion.
func markObject(o *Object) {
	if o == nil || o.marked {
		return
	}
	o.marked = true
	o.EachRef(markObject)
}

// Stats reports the collector's live-object count and an approximate live
// byte size, rendered through gommon's human-readable byte formatter for
// use by the REPL's :gc meta-command.
type Stats struct {
	LiveObjects int
	LiveBytes   int64
}

func (s Stats) String() string {
	return bytes.Format(s.LiveBytes) + " across " + itoa(s.LiveObjects) + " objects"
}

func (a *Allocator) StatsSnapshot() Stats {
	return Stats{LiveObjects: a.count, LiveBytes: a.bytes}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
