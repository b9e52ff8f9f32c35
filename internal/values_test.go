package internal

import "testing"

func TestTruthy(t *testing.T) {
	falsy := []Value{Null(), BoolVal(false), IntVal(0), FloatVal(0), StringVal("")}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%v should be falsy", v)
		}
	}
	truthy := []Value{BoolVal(true), IntVal(1), IntVal(-1), FloatVal(0.1), StringVal("x")}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%v should be truthy", v)
		}
	}
}

func TestIntDivisionTruncatesTowardZero(t *testing.T) {
	v, err := div(Pos{}, IntVal(-7), IntVal(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsInt() != -3 {
		t.Errorf("got %d, want -3 (truncate toward zero)", v.AsInt())
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := div(Pos{}, IntVal(1), IntVal(0)); err == nil {
		t.Fatal("expected ZeroDivisionError for int/int")
	}
	if _, err := div(Pos{}, FloatVal(1), FloatVal(0)); err == nil {
		t.Fatal("expected ZeroDivisionError for float/float")
	}
}

func TestModMixedFloat(t *testing.T) {
	v, err := mod(Pos{}, FloatVal(5.5), IntVal(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != kFloat || v.AsFloat() != 1.5 {
		t.Errorf("got %v, want float 1.5", v)
	}
}

func TestIntegerOverflowWraps(t *testing.T) {
	const maxInt64 = int64(1<<63 - 1)
	v, err := add(NewAllocator(), Pos{}, IntVal(maxInt64), IntVal(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	one := int64(1)
	if v.AsInt() != maxInt64+one { // wraps to math.MinInt64 via Go's native overflow
		t.Errorf("got %d, want two's-complement wraparound", v.AsInt())
	}
}

func TestNumericPromotionToFloat(t *testing.T) {
	v, err := add(NewAllocator(), Pos{}, IntVal(1), FloatVal(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != kFloat || v.AsFloat() != 1.5 {
		t.Errorf("got %v, want float 1.5", v)
	}
}

func TestStringConcatenation(t *testing.T) {
	v, err := add(NewAllocator(), Pos{}, StringVal("foo"), StringVal("bar"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "foobar" {
		t.Errorf("got %q, want %q", v.AsString(), "foobar")
	}
}

func TestListConcatenation(t *testing.T) {
	alloc := NewAllocator()
	l1 := ListVal(alloc.NewList([]Value{IntVal(1)}))
	l2 := ListVal(alloc.NewList([]Value{IntVal(2), IntVal(3)}))
	v, err := add(alloc, Pos{}, l1, l2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "[1, 2, 3]" {
		t.Errorf("got %s, want [1, 2, 3]", v.String())
	}
}

func TestStringRepetition(t *testing.T) {
	alloc := NewAllocator()
	v, err := mul(alloc, Pos{}, StringVal("ab"), IntVal(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "ababab" {
		t.Errorf("got %q, want %q", v.AsString(), "ababab")
	}
}

func TestListRepetition(t *testing.T) {
	alloc := NewAllocator()
	list := ListVal(alloc.NewList([]Value{IntVal(1), IntVal(2)}))
	v, err := mul(alloc, Pos{}, list, IntVal(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "[1, 2, 1, 2]" {
		t.Errorf("got %s, want [1, 2, 1, 2]", v.String())
	}
}

func TestEqualityAcrossKindsIsFalseNotError(t *testing.T) {
	if valueEquals(StringVal("1"), IntVal(1)) {
		t.Error("string \"1\" should not equal int 1")
	}
	if valueEquals(Null(), BoolVal(false)) {
		t.Error("null should not equal false")
	}
}

func TestEqualityNumericWidening(t *testing.T) {
	if !valueEquals(IntVal(1), FloatVal(1.0)) {
		t.Error("1 should equal 1.0 after widening")
	}
}

func TestEqualityListsByReference(t *testing.T) {
	alloc := NewAllocator()
	a := ListVal(alloc.NewList([]Value{IntVal(1)}))
	b := ListVal(alloc.NewList([]Value{IntVal(1)}))
	if valueEquals(a, b) {
		t.Error("distinct list objects with equal contents should not be == (reference equality)")
	}
	if !valueEquals(a, a) {
		t.Error("a list should equal itself")
	}
}

func TestHeterogeneousComparisonIsTypeError(t *testing.T) {
	if _, err := compareRelational(Pos{}, OpLt, StringVal("a"), IntVal(1)); err == nil {
		t.Fatal("expected TypeError comparing string and int")
	}
}

func TestStringLexicographicComparison(t *testing.T) {
	v, err := compareRelational(Pos{}, OpLt, StringVal("apple"), StringVal("banana"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.AsBool() {
		t.Error("\"apple\" should be < \"banana\"")
	}
}
