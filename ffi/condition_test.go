package ffi

import (
	"testing"

	"github.com/halcyondb/halcyon-go/errors"
)

func leaf(t *testing.T, v any) *Condition {
	t.Helper()
	val, err := NewValue(v)
	if err != nil {
		t.Fatal(err)
	}
	return ValueCondition(val)
}

func identLeaf(t *testing.T, name string) *Condition {
	t.Helper()
	v, err := Ident(name)
	if err != nil {
		t.Fatal(err)
	}
	return ValueCondition(v)
}

func TestOperatorArity(t *testing.T) {
	a := leaf(t, 1)
	b := leaf(t, 2)
	c := leaf(t, 3)

	tests := []struct {
		name  string
		build func() (*Condition, error)
		ok    bool
	}{
		{"unary one child", func() (*Condition, error) { return Unary(OpIsNull, a) }, true},
		{"unary no children", func() (*Condition, error) { return Unary(OpIsNull) }, false},
		{"unary two children", func() (*Condition, error) { return Unary(OpIsNull, a, b) }, false},
		{"binary two children", func() (*Condition, error) { return Binary(OpEquals, a, b) }, true},
		{"binary one child", func() (*Condition, error) { return Binary(OpEquals, a) }, false},
		{"binary three children", func() (*Condition, error) { return Binary(OpEquals, a, b, c) }, false},
		{"ternary three children", func() (*Condition, error) { return Ternary(OpBetween, a, b, c) }, true},
		{"ternary two children", func() (*Condition, error) { return Ternary(OpBetween, a, b) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := tt.build()
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cond == nil {
					t.Fatal("nil condition without error")
				}
				return
			}
			wantKind(t, err, errors.KindArityMismatch)
		})
	}
}

func TestArityErrorNamesCounts(t *testing.T) {
	_, err := Binary(OpEquals, leaf(t, 1))
	wantKind(t, err, errors.KindArityMismatch)
	e := err.(*errors.Error)
	if e.Detail == "" {
		t.Fatal("arity error carries no detail")
	}
	for _, want := range []string{"2", "1"} {
		if !containsStr(e.Detail, want) {
			t.Fatalf("detail %q does not name count %s", e.Detail, want)
		}
	}
}

func containsStr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// A correctly built operator node keeps the exact child objects in
// construction order.
func TestChildIdentityAndOrder(t *testing.T) {
	a := identLeaf(t, "age")
	b := leaf(t, 21)

	cond, err := Binary(OpGreaterOrEquals, a, b)
	if err != nil {
		t.Fatal(err)
	}
	kids := cond.Children()
	if len(kids) != 2 {
		t.Fatalf("children = %d, want 2", len(kids))
	}
	if kids[0] != a || kids[1] != b {
		t.Fatal("children are not the constructed objects in order")
	}
}

func TestVariadicNodes(t *testing.T) {
	a, _ := Binary(OpEquals, identLeaf(t, "x"), leaf(t, 1))
	b, _ := Binary(OpEquals, identLeaf(t, "y"), leaf(t, 2))

	empty, err := Conjunction()
	if err != nil {
		t.Fatalf("empty conjunction: %v", err)
	}
	if len(empty.Children()) != 0 {
		t.Fatal("empty conjunction has children")
	}

	or, err := Disjunction(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if or.Tag() != TagDisjunction || len(or.Children()) != 2 {
		t.Fatalf("disjunction tag=%s children=%d", or.Tag(), len(or.Children()))
	}

	_, err = Conjunction(a, nil)
	wantKind(t, err, errors.KindInvalidData)
}

func TestNewConditionDynamicForm(t *testing.T) {
	a := leaf(t, 1)
	b := leaf(t, 2)

	and, err := NewCondition(TagConjunction, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if and.Tag() != TagConjunction || len(and.Children()) != 2 {
		t.Fatalf("tag=%s children=%d", and.Tag(), len(and.Children()))
	}

	_, err = NewCondition(TagBinary, a)
	wantKind(t, err, errors.KindArityMismatch)

	_, err = NewCondition(TagTernary, a, b)
	wantKind(t, err, errors.KindArityMismatch)

	_, err = NewCondition(ConditionTag(42), a)
	wantKind(t, err, errors.KindInvalidEnum)
}

func TestStoreConditionValueLeaf(t *testing.T) {
	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	cond := leaf(t, int64(77))
	addr, err := StoreCondition(arena, arena, list, cond)
	if err != nil {
		t.Fatal(err)
	}
	tag, _ := arena.ReadU32(addr)
	if ConditionTag(int32(tag)) != TagValue {
		t.Fatalf("stored tag = %d, want %d", tag, TagValue)
	}
	v, err := LoadValue(arena, addr+condPayloadOff)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindI64 || v.Interface() != int64(77) {
		t.Fatalf("inline value = %s %v", v.Kind(), v.Interface())
	}
}

func TestStoreConditionOperatorLayout(t *testing.T) {
	arena := newTestArena(4096)
	list := NewAllocationList()
	defer list.Release()

	cond, err := Binary(OpLess, identLeaf(t, "age"), leaf(t, 30))
	if err != nil {
		t.Fatal(err)
	}
	addr, err := StoreCondition(arena, arena, list, cond)
	if err != nil {
		t.Fatal(err)
	}

	tag, _ := arena.ReadU32(addr)
	if ConditionTag(int32(tag)) != TagBinary {
		t.Fatalf("stored tag = %d, want %d", tag, TagBinary)
	}
	op, _ := arena.ReadU32(addr + condOpOff)
	if BinaryOp(int32(op)) != OpLess {
		t.Fatalf("stored op = %d, want %d", op, OpLess)
	}

	// Children live in separate nodes referenced by address.
	for i, wantTag := range []ConditionTag{TagValue, TagValue} {
		childAddr, _ := arena.ReadU32(addr + condChildOff + uint32(i)*4)
		if childAddr == 0 {
			t.Fatalf("child %d pointer is null", i)
		}
		ct, _ := arena.ReadU32(childAddr)
		if ConditionTag(int32(ct)) != wantTag {
			t.Fatalf("child %d tag = %d, want %d", i, ct, wantTag)
		}
	}

	firstChild, _ := arena.ReadU32(addr + condChildOff)
	v, err := LoadValue(arena, firstChild+condPayloadOff)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindIdent || v.Interface() != "age" {
		t.Fatalf("first child value = %s %v", v.Kind(), v.Interface())
	}
}

// Variadic nodes store their children as one contiguous array of inline
// condition nodes behind a counted sequence header.
func TestStoreConjunctionInlineChildren(t *testing.T) {
	arena := newTestArena(8192)
	list := NewAllocationList()
	defer list.Release()

	a, err := Binary(OpEquals, identLeaf(t, "x"), leaf(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Unary(OpIsNull, identLeaf(t, "y"))
	if err != nil {
		t.Fatal(err)
	}
	and, err := Conjunction(a, b)
	if err != nil {
		t.Fatal(err)
	}

	addr, err := StoreCondition(arena, arena, list, and)
	if err != nil {
		t.Fatal(err)
	}
	tag, _ := arena.ReadU32(addr)
	if ConditionTag(int32(tag)) != TagConjunction {
		t.Fatalf("stored tag = %d, want %d", tag, TagConjunction)
	}
	elems, _ := arena.ReadU32(addr + condPayloadOff + seqPtrOff)
	n, _ := arena.ReadU32(addr + condPayloadOff + seqLenOff)
	if n != 2 {
		t.Fatalf("sequence length = %d, want 2", n)
	}
	wantTags := []ConditionTag{TagBinary, TagUnary}
	for i, want := range wantTags {
		ct, _ := arena.ReadU32(elems + uint32(i)*condSize)
		if ConditionTag(int32(ct)) != want {
			t.Fatalf("element %d tag = %d, want %d", i, ct, want)
		}
	}
}

func TestStoreEmptyConjunction(t *testing.T) {
	arena := newTestArena(256)
	list := NewAllocationList()
	defer list.Release()

	and, err := Conjunction()
	if err != nil {
		t.Fatal(err)
	}
	addr, err := StoreCondition(arena, arena, list, and)
	if err != nil {
		t.Fatal(err)
	}
	ptr, _ := arena.ReadU32(addr + condPayloadOff + seqPtrOff)
	n, _ := arena.ReadU32(addr + condPayloadOff + seqLenOff)
	if ptr != 0 || n != 0 {
		t.Fatalf("empty conjunction sequence = {%d, %d}, want {0, 0}", ptr, n)
	}
}

func TestStoreNestedTree(t *testing.T) {
	arena := newTestArena(16384)
	list := NewAllocationList()
	defer list.Release()

	eq, err := Binary(OpEquals, identLeaf(t, "status"), leaf(t, "active"))
	if err != nil {
		t.Fatal(err)
	}
	between, err := Ternary(OpBetween, identLeaf(t, "age"), leaf(t, 18), leaf(t, 65))
	if err != nil {
		t.Fatal(err)
	}
	inner, err := Disjunction(eq, between)
	if err != nil {
		t.Fatal(err)
	}
	root, err := Conjunction(inner, leaf(t, true))
	if err != nil {
		t.Fatal(err)
	}

	addr, err := StoreCondition(arena, arena, list, root)
	if err != nil {
		t.Fatal(err)
	}
	tag, _ := arena.ReadU32(addr)
	if ConditionTag(int32(tag)) != TagConjunction {
		t.Fatalf("root tag = %d", tag)
	}
	elems, _ := arena.ReadU32(addr + condPayloadOff + seqPtrOff)
	innerTag, _ := arena.ReadU32(elems)
	if ConditionTag(int32(innerTag)) != TagDisjunction {
		t.Fatalf("inner tag = %d, want %d", innerTag, TagDisjunction)
	}
}

func TestStoreNilCondition(t *testing.T) {
	arena := newTestArena(64)
	_, err := StoreCondition(arena, arena, nil, nil)
	wantKind(t, err, errors.KindInvalidData)
}
