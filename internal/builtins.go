package internal

import (
	"fmt"
	"strconv"
)

// builtinDef pairs a built-in's program-scope name with its implementation.
type builtinDef struct {
	name string
	fn   BuiltinFn
}

// standardBuiltins is the fixed table of host functions declared as
// program-scope locals by NewInterpreter.
func standardBuiltins() []builtinDef {
	return []builtinDef{
		{"print", builtinPrint},
		{"println", builtinPrintln},
		{"len", builtinLen},
		{"type", builtinType},
		{"str", builtinStr},
		{"int", builtinInt},
		{"float", builtinFloat},
		{"counter", builtinCounter},
	}
}

var builtinTable map[string]BuiltinFn

func init() {
	builtinTable = make(map[string]BuiltinFn)
	for _, b := range standardBuiltins() {
		builtinTable[b.name] = b.fn
	}
}

func lookupBuiltin(name string) BuiltinFn {
	fn, ok := builtinTable[name]
	if !ok {
		panic(&InternalError{Msg: "lookupBuiltin: no such builtin: " + name})
	}
	return fn
}

func argumentErr(msg string) error {
	return &ArgumentError{Msg: msg}
}

// builtinPrint writes every argument's String() form, space-separated, with
// no trailing newline, to the interpreter's configured writer.
func builtinPrint(interp *Interpreter, args []Value) (Value, error) {
	writeArgs(interp, args, "")
	return Null(), nil
}

// builtinPrintln is builtinPrint plus a trailing newline.
func builtinPrintln(interp *Interpreter, args []Value) (Value, error) {
	writeArgs(interp, args, "\n")
	return Null(), nil
}

func writeArgs(interp *Interpreter, args []Value, suffix string) {
	if interp.out == nil {
		return
	}
	line := ""
	for i, a := range args {
		if i > 0 {
			line += " "
		}
		line += a.String()
	}
	interp.out.Printf("%s%s", line, suffix)
}

func builtinLen(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, argumentErr(fmt.Sprintf("len: expected 1 argument, got %d", len(args)))
	}
	switch args[0].Kind() {
	case kString:
		return IntVal(int64(len([]rune(args[0].AsString())))), nil
	case kList:
		return IntVal(int64(len(args[0].Object().list))), nil
	default:
		return Value{}, typeErr(Pos{}, "len: unsupported type %s", args[0].TypeName())
	}
}

func builtinType(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, argumentErr(fmt.Sprintf("type: expected 1 argument, got %d", len(args)))
	}
	return StringVal(args[0].TypeName()), nil
}

func builtinStr(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, argumentErr(fmt.Sprintf("str: expected 1 argument, got %d", len(args)))
	}
	return StringVal(args[0].String()), nil
}

func builtinInt(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, argumentErr(fmt.Sprintf("int: expected 1 argument, got %d", len(args)))
	}
	v := args[0]
	switch v.Kind() {
	case kInt:
		return v, nil
	case kFloat:
		return IntVal(int64(v.AsFloat())), nil
	case kBool:
		if v.AsBool() {
			return IntVal(1), nil
		}
		return IntVal(0), nil
	case kString:
		i, err := strconv.ParseInt(v.AsString(), 10, 64)
		if err != nil {
			return Value{}, typeErr(Pos{}, "int: cannot parse %q as int", v.AsString())
		}
		return IntVal(i), nil
	default:
		return Value{}, typeErr(Pos{}, "int: unsupported type %s", v.TypeName())
	}
}

func builtinFloat(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, argumentErr(fmt.Sprintf("float: expected 1 argument, got %d", len(args)))
	}
	v := args[0]
	switch v.Kind() {
	case kFloat:
		return v, nil
	case kInt:
		return FloatVal(float64(v.AsInt())), nil
	case kString:
		f, err := strconv.ParseFloat(v.AsString(), 64)
		if err != nil {
			return Value{}, typeErr(Pos{}, "float: cannot parse %q as float", v.AsString())
		}
		return FloatVal(f), nil
	default:
		return Value{}, typeErr(Pos{}, "float: unsupported type %s", v.TypeName())
	}
}

// builtinCounter returns a fresh builtin closure over a private counter,
// useful for proving &&/|| short-circuit without ever evaluating the right
// operand: each call to the returned value bumps and returns the count,
// starting at 1.
func builtinCounter(interp *Interpreter, args []Value) (Value, error) {
	if len(args) != 0 {
		return Value{}, argumentErr(fmt.Sprintf("counter: expected 0 arguments, got %d", len(args)))
	}
	n := new(int64)
	tick := func(_ *Interpreter, callArgs []Value) (Value, error) {
		if len(callArgs) != 0 {
			return Value{}, argumentErr(fmt.Sprintf("counter closure: expected 0 arguments, got %d", len(callArgs)))
		}
		*n++
		return IntVal(*n), nil
	}
	return BuiltinVal(interp.alloc.NewBuiltin("counter closure", tick)), nil
}
