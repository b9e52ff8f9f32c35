package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the runtime sum type: Null, Bool, Int, Float, String, List,
// Func, Builtin. Scalars are Go value types (comparable with ==); List and
// Func carry allocator-owned identity via *Object.
type Value struct {
	kind valueKind
	b    bool
	i    int64
	f    float64
	s    string
	obj  *Object
}

type valueKind uint8

const (
	kNull valueKind = iota
	kBool
	kInt
	kFloat
	kString
	kList
	kFunc
	kBuiltin
)

func (v Value) Kind() valueKind { return v.kind }

func Null() Value              { return Value{kind: kNull} }
func BoolVal(b bool) Value     { return Value{kind: kBool, b: b} }
func IntVal(i int64) Value     { return Value{kind: kInt, i: i} }
func FloatVal(f float64) Value { return Value{kind: kFloat, f: f} }
func StringVal(s string) Value { return Value{kind: kString, s: s} }

func ListVal(o *Object) Value    { return Value{kind: kList, obj: o} }
func FuncVal(o *Object) Value    { return Value{kind: kFunc, obj: o} }
func BuiltinVal(o *Object) Value { return Value{kind: kBuiltin, obj: o} }

func (v Value) IsNull() bool  { return v.kind == kNull }
func (v Value) AsBool() bool  { return v.b }
func (v Value) AsInt() int64  { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) Object() *Object  { return v.obj }

func (v Value) TypeName() string {
	switch v.kind {
	case kNull:
		return "null"
	case kBool:
		return "bool"
	case kInt:
		return "int"
	case kFloat:
		return "float"
	case kString:
		return "string"
	case kList:
		return "list"
	case kFunc:
		return "function"
	case kBuiltin:
		return "builtin"
	default:
		return "?"
	}
}

// Truthy implements the language's truthiness coercion: null, false, zero,
// empty string, and empty list are all falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case kNull:
		return false
	case kBool:
		return v.b
	case kInt:
		return v.i != 0
	case kFloat:
		return v.f != 0
	case kString:
		return v.s != ""
	case kList:
		return len(v.obj.list) != 0
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case kNull:
		return "null"
	case kBool:
		return strconv.FormatBool(v.b)
	case kInt:
		return strconv.FormatInt(v.i, 10)
	case kFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case kString:
		return v.s
	case kList:
		parts := make([]string, len(v.obj.list))
		for i, e := range v.obj.list {
			parts[i] = e.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case kFunc:
		return "<function>"
	case kBuiltin:
		return "<builtin>"
	default:
		return "?"
	}
}

// Repr is String() but quotes strings, matching how lists print their
// elements and how the REPL echoes a bare expression's result.
func (v Value) Repr() string {
	if v.kind == kString {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// isNumeric reports whether v is Int or Float — the only kinds arithmetic
// operators widen against each other.
func (v Value) isNumeric() bool { return v.kind == kInt || v.kind == kFloat }

func (v Value) asFloat64() float64 {
	if v.kind == kInt {
		return float64(v.i)
	}
	return v.f
}

// TypeError is raised for operator/operand kind mismatches, non-callable
// calls, non-indexable subscripts, and assignment to a non-lvalue.
type TypeError struct {
	Msg string
	Pos Pos
}

func (e *TypeError) Error() string { return e.Msg }

func typeErr(pos Pos, format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// ZeroDivisionError is raised for integer or float division/modulo by
// zero.
type ZeroDivisionError struct {
	Pos Pos
}

func (e *ZeroDivisionError) Error() string { return "division by zero" }

// IndexError is raised for out-of-range subscripts.
type IndexError struct {
	Msg string
	Pos Pos
}

func (e *IndexError) Error() string { return e.Msg }

// ArgumentError is raised for call arity mismatches.
type ArgumentError struct {
	Msg string
	Pos Pos
}

func (e *ArgumentError) Error() string { return e.Msg }

// --- arithmetic ---

func add(alloc *Allocator, pos Pos, l, r Value) (Value, error) {
	if l.isNumeric() && r.isNumeric() {
		return numericBinOp(l, r, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }), nil
	}
	if l.kind == kString && r.kind == kString {
		return StringVal(l.s + r.s), nil
	}
	if l.kind == kList && r.kind == kList {
		out := make([]Value, 0, len(l.obj.list)+len(r.obj.list))
		out = append(out, l.obj.list...)
		out = append(out, r.obj.list...)
		return ListVal(alloc.NewList(out)), nil
	}
	return Value{}, typeErr(pos, "unsupported operand types for +: %s and %s", l.TypeName(), r.TypeName())
}

func sub(pos Pos, l, r Value) (Value, error) {
	if l.isNumeric() && r.isNumeric() {
		return numericBinOp(l, r, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }), nil
	}
	return Value{}, typeErr(pos, "unsupported operand types for -: %s and %s", l.TypeName(), r.TypeName())
}

func repeat(alloc *Allocator, pos Pos, l, r Value) (Value, error) {
	// String*Int, Int*String, List*Int, Int*List repetition.
	var s Value
	var n Value
	switch {
	case l.kind == kString && r.kind == kInt:
		s, n = l, r
	case l.kind == kInt && r.kind == kString:
		s, n = r, l
	case l.kind == kList && r.kind == kInt:
		return repeatList(alloc, l, r.i), nil
	case l.kind == kInt && r.kind == kList:
		return repeatList(alloc, r, l.i), nil
	default:
		return Value{}, nil
	}
	if s.kind == kString {
		if n.i <= 0 {
			return StringVal(""), nil
		}
		return StringVal(strings.Repeat(s.s, int(n.i))), nil
	}
	return Value{}, typeErr(pos, "unsupported operand types for *: %s and %s", l.TypeName(), r.TypeName())
}

func repeatList(alloc *Allocator, l Value, n int64) Value {
	if n <= 0 {
		return ListVal(alloc.NewList(nil))
	}
	out := make([]Value, 0, len(l.obj.list)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, l.obj.list...)
	}
	return ListVal(alloc.NewList(out))
}

func mul(alloc *Allocator, pos Pos, l, r Value) (Value, error) {
	if l.isNumeric() && r.isNumeric() {
		return numericBinOp(l, r, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }), nil
	}
	if (l.kind == kString && r.kind == kInt) || (l.kind == kInt && r.kind == kString) ||
		(l.kind == kList && r.kind == kInt) || (l.kind == kInt && r.kind == kList) {
		return repeat(alloc, pos, l, r)
	}
	return Value{}, typeErr(pos, "unsupported operand types for *: %s and %s", l.TypeName(), r.TypeName())
}

func div(pos Pos, l, r Value) (Value, error) {
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, typeErr(pos, "unsupported operand types for /: %s and %s", l.TypeName(), r.TypeName())
	}
	if l.kind == kInt && r.kind == kInt {
		if r.i == 0 {
			return Value{}, &ZeroDivisionError{Pos: pos}
		}
		// Go's / on signed integers truncates toward zero already.
		return IntVal(l.i / r.i), nil
	}
	rf := r.asFloat64()
	if rf == 0 {
		return Value{}, &ZeroDivisionError{Pos: pos}
	}
	return FloatVal(l.asFloat64() / rf), nil
}

func mod(pos Pos, l, r Value) (Value, error) {
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, typeErr(pos, "unsupported operand types for %%: %s and %s", l.TypeName(), r.TypeName())
	}
	if l.kind == kInt && r.kind == kInt {
		if r.i == 0 {
			return Value{}, &ZeroDivisionError{Pos: pos}
		}
		return IntVal(l.i % r.i), nil
	}
	rf := r.asFloat64()
	if rf == 0 {
		return Value{}, &ZeroDivisionError{Pos: pos}
	}
	return FloatVal(math.Mod(l.asFloat64(), rf)), nil
}

func numericBinOp(l, r Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) Value {
	if l.kind == kInt && r.kind == kInt {
		return IntVal(intOp(l.i, r.i))
	}
	return FloatVal(floatOp(l.asFloat64(), r.asFloat64()))
}

func negate(pos Pos, v Value) (Value, error) {
	switch v.kind {
	case kInt:
		return IntVal(-v.i), nil
	case kFloat:
		return FloatVal(-v.f), nil
	default:
		return Value{}, typeErr(pos, "unsupported operand type for unary -: %s", v.TypeName())
	}
}

// compareRelational implements < <= > >=: numeric widening, lexicographic
// string comparison, TypeError on heterogeneous kinds.
func compareRelational(pos Pos, code OpCode, l, r Value) (Value, error) {
	if l.isNumeric() && r.isNumeric() {
		lf, rf := l.asFloat64(), r.asFloat64()
		return BoolVal(relOp(code, lf, rf)), nil
	}
	if l.kind == kString && r.kind == kString {
		return BoolVal(relOpStr(code, l.s, r.s)), nil
	}
	return Value{}, typeErr(pos, "unsupported comparison between %s and %s", l.TypeName(), r.TypeName())
}

func relOp(code OpCode, a, b float64) bool {
	switch code {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	}
	return false
}

func relOpStr(code OpCode, a, b string) bool {
	switch code {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	}
	return false
}

// valueEquals implements == and != across the value universe: numeric
// widening across Int/Float, structural equality for strings/bools/null,
// reference equality for lists/functions, and false (never TypeError)
// across different kinds.
func valueEquals(l, r Value) bool {
	if l.isNumeric() && r.isNumeric() {
		return l.asFloat64() == r.asFloat64()
	}
	if l.kind != r.kind {
		return false
	}
	switch l.kind {
	case kNull:
		return true
	case kBool:
		return l.b == r.b
	case kString:
		return l.s == r.s
	case kList, kFunc, kBuiltin:
		return l.obj == r.obj
	default:
		return false
	}
}
