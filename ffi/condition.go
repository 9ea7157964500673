package ffi

import (
	"github.com/halcyondb/halcyon-go/errors"
	"github.com/halcyondb/halcyon-go/ffi/internal/abi"
)

// ConditionTag discriminates the node kinds of a predicate tree. Numeric
// values are part of the binary contract.
type ConditionTag int32

const (
	TagConjunction ConditionTag = iota
	TagDisjunction
	TagUnary
	TagBinary
	TagTernary
	TagValue
)

var conditionTagNames = [...]string{
	TagConjunction: "conjunction",
	TagDisjunction: "disjunction",
	TagUnary:       "unary condition",
	TagBinary:      "binary condition",
	TagTernary:     "ternary condition",
	TagValue:       "value",
}

func (t ConditionTag) String() string {
	if t >= 0 && int(t) < len(conditionTagNames) {
		return conditionTagNames[t]
	}
	return "unknown"
}

type UnaryOp int32

const (
	OpIsNull UnaryOp = iota
	OpIsNotNull
	OpExists
	OpNotExists
	OpNot
)

type BinaryOp int32

const (
	OpEquals BinaryOp = iota
	OpNotEquals
	OpGreater
	OpGreaterOrEquals
	OpLess
	OpLessOrEquals
	OpLike
	OpNotLike
	OpRegexp
	OpNotRegexp
	OpIn
	OpNotIn
)

type TernaryOp int32

const (
	OpBetween TernaryOp = iota
	OpNotBetween
)

// arityTable fixes the child count per node kind. Variadic kinds are -1.
// Wrong arity is a construction-time failure, never a runtime one.
var arityTable = map[ConditionTag]int{
	TagConjunction: -1,
	TagDisjunction: -1,
	TagUnary:       1,
	TagBinary:      2,
	TagTernary:     3,
	TagValue:       1,
}

// Condition is one node of a predicate tree. A tree exclusively owns its
// children: it is stored into library memory depth-first and torn down as
// one unit after the call that consumed it.
type Condition struct {
	children  []*Condition
	value     Value
	tag       ConditionTag
	unaryOp   UnaryOp
	binaryOp  BinaryOp
	ternaryOp TernaryOp
}

func (c *Condition) Tag() ConditionTag {
	return c.tag
}

// Children returns the direct children in construction order.
func (c *Condition) Children() []*Condition {
	return c.children
}

// Conjunction builds an AND node over any number of children, including
// zero. The empty conjunction is the operator's neutral element; its
// interpretation is left to the native side.
func Conjunction(children ...*Condition) (*Condition, error) {
	return nAry(TagConjunction, children)
}

// Disjunction builds an OR node over any number of children.
func Disjunction(children ...*Condition) (*Condition, error) {
	return nAry(TagDisjunction, children)
}

func nAry(tag ConditionTag, children []*Condition) (*Condition, error) {
	if len(children) > abi.MaxSeqLength {
		return nil, errors.New(errors.PhaseValidate, errors.KindOverflow).
			Detail("%s with %d children exceeds maximum %d", tag, len(children), abi.MaxSeqLength).
			Build()
	}
	for _, ch := range children {
		if ch == nil {
			return nil, errors.InvalidData(errors.PhaseValidate, nil, "nil child condition")
		}
	}
	return &Condition{tag: tag, children: children}, nil
}

// Unary builds an operator node with exactly one child.
func Unary(op UnaryOp, children ...*Condition) (*Condition, error) {
	if err := checkArity(TagUnary, len(children)); err != nil {
		return nil, err
	}
	if children[0] == nil {
		return nil, errors.InvalidData(errors.PhaseValidate, nil, "nil child condition")
	}
	return &Condition{tag: TagUnary, unaryOp: op, children: children}, nil
}

// Binary builds an operator node with exactly two children.
func Binary(op BinaryOp, children ...*Condition) (*Condition, error) {
	if err := checkArity(TagBinary, len(children)); err != nil {
		return nil, err
	}
	for _, ch := range children {
		if ch == nil {
			return nil, errors.InvalidData(errors.PhaseValidate, nil, "nil child condition")
		}
	}
	return &Condition{tag: TagBinary, binaryOp: op, children: children}, nil
}

// Ternary builds an operator node with exactly three children.
func Ternary(op TernaryOp, children ...*Condition) (*Condition, error) {
	if err := checkArity(TagTernary, len(children)); err != nil {
		return nil, err
	}
	for _, ch := range children {
		if ch == nil {
			return nil, errors.InvalidData(errors.PhaseValidate, nil, "nil child condition")
		}
	}
	return &Condition{tag: TagTernary, ternaryOp: op, children: children}, nil
}

// ValueCondition wraps a scalar as a leaf node.
func ValueCondition(v Value) *Condition {
	return &Condition{tag: TagValue, value: v}
}

// NewCondition is the dynamic construction form: the child count is checked
// against the arity table for the tag. Operator nodes built this way carry
// the zero operator; prefer the typed constructors when the operator
// matters.
func NewCondition(tag ConditionTag, children ...*Condition) (*Condition, error) {
	switch tag {
	case TagConjunction, TagDisjunction:
		return nAry(tag, children)
	case TagUnary:
		return Unary(0, children...)
	case TagBinary:
		return Binary(0, children...)
	case TagTernary:
		return Ternary(0, children...)
	case TagValue:
		if err := checkArity(TagValue, len(children)); err != nil {
			return nil, err
		}
		if children[0] == nil || children[0].tag != TagValue {
			return nil, errors.InvalidData(errors.PhaseValidate, nil, "value node requires a value leaf child")
		}
		return children[0], nil
	}
	return nil, errors.InvalidEnum(errors.PhaseValidate, int32(tag), "condition tag")
}

func checkArity(tag ConditionTag, got int) error {
	want := arityTable[tag]
	if want >= 0 && got != want {
		return errors.ArityMismatch(tag.String(), want, got)
	}
	return nil
}

// StoreCondition places the whole tree into library memory and returns the
// address of the root node. Children are stored depth-first before their
// parent; the parent references them by address, so the tree must stay
// allocated (tracked in list) until the consuming call returns.
func StoreCondition(mem Memory, alloc Allocator, list *AllocationList, c *Condition) (uint32, error) {
	if c == nil {
		return 0, errors.InvalidData(errors.PhaseEncode, nil, "nil condition")
	}
	addr, err := alloc.Alloc(condSize, condAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, condSize, condAlign)
	}
	if list != nil {
		list.Add(addr, condSize, condAlign)
	}
	if err := storeConditionAt(mem, alloc, list, addr, c); err != nil {
		return 0, err
	}
	return addr, nil
}

func storeConditionAt(mem Memory, alloc Allocator, list *AllocationList, addr uint32, c *Condition) error {
	if err := mem.WriteU32(addr, uint32(c.tag)); err != nil {
		return err
	}

	switch c.tag {
	case TagConjunction, TagDisjunction:
		return storeConditionSeqAt(mem, alloc, list, addr+condPayloadOff, c.children)

	case TagUnary:
		if err := mem.WriteU32(addr+condOpOff, uint32(c.unaryOp)); err != nil {
			return err
		}
		return storeChildren(mem, alloc, list, addr+condChildOff, c.children)

	case TagBinary:
		if err := mem.WriteU32(addr+condOpOff, uint32(c.binaryOp)); err != nil {
			return err
		}
		return storeChildren(mem, alloc, list, addr+condChildOff, c.children)

	case TagTernary:
		if err := mem.WriteU32(addr+condOpOff, uint32(c.ternaryOp)); err != nil {
			return err
		}
		return storeChildren(mem, alloc, list, addr+condChildOff, c.children)

	case TagValue:
		return c.value.storeValueAt(mem, alloc, list, addr+condPayloadOff)
	}
	return errors.InvalidEnum(errors.PhaseEncode, int32(c.tag), "condition tag")
}

// storeChildren stores each child node separately and writes its address
// into the parent's child pointer slots.
func storeChildren(mem Memory, alloc Allocator, list *AllocationList, slots uint32, children []*Condition) error {
	for i, ch := range children {
		childAddr, err := StoreCondition(mem, alloc, list, ch)
		if err != nil {
			return err
		}
		if err := mem.WriteU32(slots+uint32(i)*4, childAddr); err != nil {
			return err
		}
	}
	return nil
}

// storeConditionSeqAt stores variadic children as a contiguous array of
// condition nodes referenced by a counted sequence header at addr.
func storeConditionSeqAt(mem Memory, alloc Allocator, list *AllocationList, addr uint32, children []*Condition) error {
	n := uint32(len(children))
	if n == 0 {
		return writeSeqAt(mem, addr, 0, 0)
	}
	total, ok := abi.SafeMulU32(n, condSize)
	if !ok {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Detail("condition sequence size overflow: %d * %d", n, condSize).
			Build()
	}
	elems, err := alloc.Alloc(total, condAlign)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseEncode, total, condAlign)
	}
	if list != nil {
		list.Add(elems, total, condAlign)
	}
	for i, ch := range children {
		if err := storeConditionAt(mem, alloc, list, elems+uint32(i)*condSize, ch); err != nil {
			return err
		}
	}
	return writeSeqAt(mem, addr, elems, n)
}
