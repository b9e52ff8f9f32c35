package internal

import "fmt"

// evalOp dispatches every operator form. Binary/unary arithmetic delegates
// to values.go; the remaining cases (short-circuit, assignment, call,
// subscript) need the interpreter itself and live here.
func (in *Interpreter) evalOp(n *Op) Value {
	switch n.Code {
	case OpAdd:
		return in.binNumeric(n, add)
	case OpSub:
		return in.binNumericNoAlloc(n, sub)
	case OpMul:
		return in.binNumeric(n, mul)
	case OpDiv:
		return in.binNumericNoAlloc(n, div)
	case OpMod:
		return in.binNumericNoAlloc(n, mod)
	case OpLt, OpLe, OpGt, OpGe:
		l := in.evalExp(n.Args[0])
		r := in.evalExp(n.Args[1])
		v, err := compareRelational(n.Start(), n.Code, l, r)
		if err != nil {
			panic(err)
		}
		return v
	case OpEq:
		l := in.evalExp(n.Args[0])
		r := in.evalExp(n.Args[1])
		return BoolVal(valueEquals(l, r))
	case OpNe:
		l := in.evalExp(n.Args[0])
		r := in.evalExp(n.Args[1])
		return BoolVal(!valueEquals(l, r))
	case OpNot:
		v := in.evalExp(n.Args[0])
		return BoolVal(!v.Truthy())
	case OpUnaryPlus:
		v := in.evalExp(n.Args[0])
		if !v.isNumeric() {
			panic(typeErr(n.Start(), "unsupported operand type for unary +: %s", v.TypeName()))
		}
		return v
	case OpUnaryMinus:
		v := in.evalExp(n.Args[0])
		out, err := negate(n.Start(), v)
		if err != nil {
			panic(err)
		}
		return out
	case OpAnd:
		// short-circuit: returns the last operand actually evaluated,
		// not a coerced bool.
		l := in.evalExp(n.Args[0])
		if !l.Truthy() {
			return l
		}
		return in.evalExp(n.Args[1])
	case OpOr:
		l := in.evalExp(n.Args[0])
		if l.Truthy() {
			return l
		}
		return in.evalExp(n.Args[1])
	case OpAssign:
		v := in.evalExp(n.Args[1])
		in.assign(n.Args[0], v)
		return v
	case OpAddAssign:
		return in.compoundAssign(n, func(l, r Value) (Value, error) { return add(in.alloc, n.Start(), l, r) })
	case OpSubAssign:
		return in.compoundAssign(n, func(l, r Value) (Value, error) { return sub(n.Start(), l, r) })
	case OpMulAssign:
		return in.compoundAssign(n, func(l, r Value) (Value, error) { return mul(in.alloc, n.Start(), l, r) })
	case OpDivAssign:
		return in.compoundAssign(n, func(l, r Value) (Value, error) { return div(n.Start(), l, r) })
	case OpModAssign:
		return in.compoundAssign(n, func(l, r Value) (Value, error) { return mod(n.Start(), l, r) })
	case OpCall:
		return in.call(n)
	case OpSubscript:
		return in.subscriptGet(n)
	case OpExpList:
		var last Value = Null()
		for _, arg := range n.Args {
			last = in.evalExp(arg)
		}
		return last
	default:
		panic(&InternalError{Msg: fmt.Sprintf("evalOp: unhandled op code %d", n.Code)})
	}
}

func (in *Interpreter) binNumeric(n *Op, f func(alloc *Allocator, pos Pos, l, r Value) (Value, error)) Value {
	l := in.evalExp(n.Args[0])
	r := in.evalExp(n.Args[1])
	v, err := f(in.alloc, n.Start(), l, r)
	if err != nil {
		panic(err)
	}
	return v
}

func (in *Interpreter) binNumericNoAlloc(n *Op, f func(pos Pos, l, r Value) (Value, error)) Value {
	l := in.evalExp(n.Args[0])
	r := in.evalExp(n.Args[1])
	v, err := f(n.Start(), l, r)
	if err != nil {
		panic(err)
	}
	return v
}

// compoundAssign evaluates lhs op= rhs: read the current lvalue, combine
// with the evaluated rhs, then write the result back through the same
// lvalue path as OpAssign. A subscript target's receiver and index are each
// evaluated exactly once, up front, and reused for both the read and the
// write — evaluating them separately for the read and again for the write
// would run any side-effecting receiver/index expression twice.
func (in *Interpreter) compoundAssign(n *Op, combine func(l, r Value) (Value, error)) Value {
	if sub, ok := n.Args[0].(*Op); ok && sub.Code == OpSubscript {
		recv := in.evalExp(sub.Args[0])
		idx := in.evalExp(sub.Args[1])
		cur := in.subscriptIndex(sub.Start(), recv, idx)
		rhs := in.evalExp(n.Args[1])
		v, err := combine(cur, rhs)
		if err != nil {
			panic(err)
		}
		in.subscriptStore(sub.Start(), recv, idx, v)
		return v
	}

	cur := in.evalExp(n.Args[0])
	rhs := in.evalExp(n.Args[1])
	v, err := combine(cur, rhs)
	if err != nil {
		panic(err)
	}
	in.assign(n.Args[0], v)
	return v
}

// assign implements the language's lvalue rule: a bare Var, or a subscript
// expression naming a list element. Anything else — including expression
// lists — is a TypeError.
func (in *Interpreter) assign(target Node, v Value) {
	switch t := target.(type) {
	case *Var:
		in.writeVar(t, v)
	case *Op:
		if t.Code == OpSubscript {
			in.subscriptSet(t, v)
			return
		}
		panic(typeErr(t.Start(), "invalid assignment target"))
	default:
		panic(typeErr(target.Start(), "invalid assignment target"))
	}
}

func (in *Interpreter) writeVar(v *Var, val Value) {
	if v.Attr.IsLocal {
		in.currentFrame().SetVar(v.Attr.Index, val)
		return
	}
	frame, slot := in.resolveNonlocalFrame(v)
	frame.SetVar(slot, val)
}

// subscriptGet implements string/list indexing: negative indices count from
// the end, out-of-range raises IndexError, and any other receiver kind
// raises TypeError.
func (in *Interpreter) subscriptGet(n *Op) Value {
	recv := in.evalExp(n.Args[0])
	idx := in.evalExp(n.Args[1])
	return in.subscriptIndex(n.Start(), recv, idx)
}

// subscriptIndex does the actual indexing once recv and idx are already
// evaluated, so callers that need the receiver/index values again (compound
// assignment's read-then-write) don't have to re-evaluate the expressions
// that produced them.
func (in *Interpreter) subscriptIndex(pos Pos, recv, idx Value) Value {
	if idx.Kind() != kInt {
		panic(typeErr(pos, "subscript index must be an int, got %s", idx.TypeName()))
	}
	switch recv.Kind() {
	case kString:
		runes := []rune(recv.AsString())
		i, err := boundsCheck(pos, idx.AsInt(), len(runes))
		if err != nil {
			panic(err)
		}
		return StringVal(string(runes[i]))
	case kList:
		list := recv.Object().list
		i, err := boundsCheck(pos, idx.AsInt(), len(list))
		if err != nil {
			panic(err)
		}
		return list[i]
	default:
		panic(typeErr(pos, "%s is not subscriptable", recv.TypeName()))
	}
}

// subscriptSet implements in-place list element assignment. Strings are
// immutable, so subscript-assignment to a string is a TypeError.
func (in *Interpreter) subscriptSet(n *Op, v Value) {
	recv := in.evalExp(n.Args[0])
	idx := in.evalExp(n.Args[1])
	in.subscriptStore(n.Start(), recv, idx, v)
}

// subscriptStore is subscriptSet's counterpart to subscriptIndex: the write
// half of subscript assignment, taking an already-evaluated receiver/index.
func (in *Interpreter) subscriptStore(pos Pos, recv, idx, v Value) {
	if idx.Kind() != kInt {
		panic(typeErr(pos, "subscript index must be an int, got %s", idx.TypeName()))
	}
	switch recv.Kind() {
	case kList:
		list := recv.Object().list
		i, err := boundsCheck(pos, idx.AsInt(), len(list))
		if err != nil {
			panic(err)
		}
		list[i] = v
	case kString:
		panic(typeErr(pos, "strings do not support item assignment"))
	default:
		panic(typeErr(pos, "%s does not support item assignment", recv.TypeName()))
	}
}

func boundsCheck(pos Pos, idx int64, length int) (int, error) {
	i := idx
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, &IndexError{Msg: fmt.Sprintf("index %d out of range", idx), Pos: pos}
	}
	return int(i), nil
}

// call implements OpCall: evaluate the callee then every argument
// left-to-right, then dispatch on the callee's kind.
func (in *Interpreter) call(n *Op) Value {
	callee := in.evalExp(n.Args[0])
	args := make([]Value, len(n.Args)-1)
	for i, a := range n.Args[1:] {
		args[i] = in.evalExp(a)
	}
	switch callee.Kind() {
	case kBuiltin:
		v, err := callee.Object().builtinFn(in, args)
		if err != nil {
			panic(err)
		}
		return v
	case kFunc:
		return in.callClosure(n.Start(), callee.Object(), args)
	default:
		panic(typeErr(n.Start(), "%s is not callable", callee.TypeName()))
	}
}

// callClosure runs a closure's body with a fresh frame whose lexical
// parent is the frame captured at the Func literal's evaluation time —
// not the caller's frame — so lookups from inside the body see the
// definition-site scope rather than whatever happens to be calling in.
func (in *Interpreter) callClosure(pos Pos, fn *Object, args []Value) (result Value) {
	params := fn.funcNode.Params
	if len(args) != len(params) {
		panic(&ArgumentError{
			Msg: fmt.Sprintf("expected %d argument(s), got %d", len(params), len(args)),
			Pos: pos,
		})
	}

	frame := in.alloc.NewFrame(fn.closure, fn.funcNode.Block, len(fn.funcNode.Block.Attr.LocalInfo))
	for i := range params {
		frame.SetVar(i, args[i])
	}

	in.frames = append(in.frames, frame)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	result = Null()
	func() {
		defer func() {
			if r := recover(); r != nil {
				if ret, ok := r.(returnSignal); ok {
					result = ret.value
					return
				}
				panic(r)
			}
		}()
		for _, stmt := range fn.funcNode.Block.Stmts {
			in.execStmt(stmt)
		}
	}()
	return result
}
