package ffi

import (
	"math"
	"unicode/utf8"

	"github.com/halcyondb/halcyon-go/errors"
	"github.com/halcyondb/halcyon-go/ffi/internal/abi"
)

// Value is a tagged scalar ready for the boundary: a discriminant plus the
// one payload variant that discriminant selects. Values are constructed
// immediately before the call that consumes them and validated eagerly, so
// nothing malformed ever reaches native memory.
type Value struct {
	str  string
	bin  []byte
	i64  int64
	f64  float64
	b    bool
	kind ValueKind
}

// NewValue infers the kind from the Go type of v. The mapping is a total,
// order-independent table:
//
//	bool                          -> bool
//	int, int8..int64, uint..u64   -> i64
//	float32, float64              -> f64
//	string                        -> string
//	[]byte                        -> binary
//	nil                           -> null
//	Value                         -> passed through unchanged
//
// There is no fallback: an unmapped type fails with a type error naming it.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{kind: KindNull}, nil
	case Value:
		return x, nil
	case bool:
		return Value{kind: KindBool, b: x}, nil
	case string:
		return NewValueAs(x, KindString)
	case []byte:
		return NewValueAs(x, KindBinary)
	case float32, float64:
		return NewValueAs(v, KindF64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return NewValueAs(v, KindI64)
	default:
		return Value{}, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			GoType(abi.TypeName(v)).
			Detail("no default kind mapping, pass an explicit kind").
			Build()
	}
}

// NewValueAs encodes v under an explicit kind. The value must be
// shape-compatible with the kind's payload: out-of-range values fail here,
// at construction, never at the native boundary.
func NewValueAs(v any, kind ValueKind) (Value, error) {
	switch kind {
	case KindNull:
		if v != nil {
			return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), "nil")
		}
		return Value{kind: KindNull}, nil

	case KindIdent, KindString:
		s, ok := v.(string)
		if !ok {
			if b, isBytes := v.([]byte); isBytes {
				s, ok = string(b), true
			}
		}
		if !ok {
			return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), "string")
		}
		if !utf8.ValidString(s) {
			return Value{}, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(s))
		}
		return Value{kind: kind, str: s}, nil

	case KindBinary:
		switch x := v.(type) {
		case []byte:
			return Value{kind: KindBinary, bin: x}, nil
		case string:
			return Value{kind: KindBinary, bin: []byte(x)}, nil
		}
		return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), "[]byte")

	case KindI64:
		n, ok := abi.CoerceToInt64(v)
		if !ok {
			return Value{}, coerceErr(v, "i64")
		}
		return Value{kind: KindI64, i64: n}, nil

	case KindI32:
		n, ok := abi.CoerceToInt32(v)
		if !ok {
			return Value{}, coerceErr(v, "i32")
		}
		return Value{kind: KindI32, i64: int64(n)}, nil

	case KindI16:
		n, ok := abi.CoerceToInt16(v)
		if !ok {
			return Value{}, coerceErr(v, "i16")
		}
		return Value{kind: KindI16, i64: int64(n)}, nil

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), "bool")
		}
		return Value{kind: KindBool, b: b}, nil

	case KindF64:
		f, ok := abi.CoerceToFloat64(v)
		if !ok {
			return Value{}, coerceErr(v, "f64")
		}
		return Value{kind: KindF64, f64: f}, nil

	case KindF32:
		f, ok := abi.CoerceToFloat32(v)
		if !ok {
			return Value{}, coerceErr(v, "f32")
		}
		return Value{kind: KindF32, f64: float64(f)}, nil

	default:
		return Value{}, errors.InvalidEnum(errors.PhaseEncode, int32(kind), "value kind")
	}
}

func coerceErr(v any, target string) error {
	if _, isNumeric := abi.CoerceToFloat64(v); isNumeric {
		return errors.OutOfRange(errors.PhaseEncode, "value", v, target)
	}
	return errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), target)
}

// Ident builds an identifier value (column or table name). See KindIdent for
// the escaping caveat.
func Ident(name string) (Value, error) {
	return NewValueAs(name, KindIdent)
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Interface returns the Go value carried by v: nil, bool, int64/int32/int16,
// float64/float32, string or []byte according to the kind.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindIdent, KindString:
		return v.str
	case KindBinary:
		return v.bin
	case KindI64:
		return v.i64
	case KindI32:
		return int32(v.i64)
	case KindI16:
		return int16(v.i64)
	case KindBool:
		return v.b
	case KindF64:
		return v.f64
	case KindF32:
		return float32(v.f64)
	}
	return nil
}

// storeValueAt writes the 16-byte tagged union at addr. The payload is only
// ever written under the tag that selects it.
func (v Value) storeValueAt(mem Memory, alloc Allocator, list *AllocationList, addr uint32) error {
	if err := mem.WriteU32(addr, uint32(v.kind)); err != nil {
		return err
	}
	payload := addr + valuePayloadOff
	switch v.kind {
	case KindNull:
		return nil
	case KindIdent, KindString:
		return storeBytesAt(mem, alloc, list, payload, []byte(v.str), nil)
	case KindBinary:
		return storeBytesAt(mem, alloc, list, payload, v.bin, nil)
	case KindI64:
		return mem.WriteU64(payload, uint64(v.i64))
	case KindI32:
		return mem.WriteU32(payload, uint32(int32(v.i64)))
	case KindI16:
		return mem.WriteU16(payload, uint16(int16(v.i64)))
	case KindBool:
		var b uint8
		if v.b {
			b = 1
		}
		return mem.WriteU8(payload, b)
	case KindF64:
		return mem.WriteU64(payload, math.Float64bits(v.f64))
	case KindF32:
		return mem.WriteU32(payload, math.Float32bits(float32(v.f64)))
	}
	return errors.InvalidEnum(errors.PhaseEncode, int32(v.kind), "value kind")
}

// StoreValue places v into library memory and returns its address.
func StoreValue(mem Memory, alloc Allocator, list *AllocationList, v Value) (uint32, error) {
	addr, err := alloc.Alloc(valueSize, valueAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, valueSize, valueAlign)
	}
	if list != nil {
		list.Add(addr, valueSize, valueAlign)
	}
	if err := v.storeValueAt(mem, alloc, list, addr); err != nil {
		return 0, err
	}
	return addr, nil
}

// LoadValue reads a tagged value back out of library memory. The payload is
// interpreted strictly under the stored discriminant.
func LoadValue(mem Memory, addr uint32) (Value, error) {
	raw, err := mem.ReadU32(addr)
	if err != nil {
		return Value{}, err
	}
	kind := ValueKind(int32(raw))
	if !kind.valid() {
		return Value{}, errors.InvalidEnum(errors.PhaseDecode, int32(raw), "value kind")
	}

	payload := addr + valuePayloadOff
	switch kind {
	case KindNull:
		return Value{kind: KindNull}, nil
	case KindIdent, KindString:
		s, err := LoadString(mem, payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: kind, str: s}, nil
	case KindBinary:
		b, err := readSeqAt(mem, payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindBinary, bin: b}, nil
	case KindI64:
		n, err := mem.ReadU64(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindI64, i64: int64(n)}, nil
	case KindI32:
		n, err := mem.ReadU32(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindI32, i64: int64(int32(n))}, nil
	case KindI16:
		n, err := mem.ReadU16(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindI16, i64: int64(int16(n))}, nil
	case KindBool:
		b, err := mem.ReadU8(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindBool, b: b != 0}, nil
	case KindF64:
		bits, err := mem.ReadU64(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindF64, f64: math.Float64frombits(bits)}, nil
	case KindF32:
		bits, err := mem.ReadU32(payload)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindF32, f64: float64(math.Float32frombits(bits))}, nil
	}
	return Value{}, errors.InvalidEnum(errors.PhaseDecode, int32(raw), "value kind")
}
