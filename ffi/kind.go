package ffi

// ValueKind is the discriminant of a tagged value. The numeric values are
// part of the binary contract and must not be reordered.
type ValueKind int32

const (
	KindNull ValueKind = iota
	// KindIdent is an identifier such as a column name. It is passed to the
	// native side unescaped: never feed it attacker-controlled or otherwise
	// unchecked input. This is a caller obligation, not enforced here.
	KindIdent
	KindString
	KindI64
	KindI32
	KindI16
	KindBool
	KindF64
	KindF32
	KindBinary
)

var kindNames = [...]string{
	KindNull:   "null",
	KindIdent:  "ident",
	KindString: "string",
	KindI64:    "i64",
	KindI32:    "i32",
	KindI16:    "i16",
	KindBool:   "bool",
	KindF64:    "f64",
	KindF32:    "f32",
	KindBinary: "binary",
}

func (k ValueKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k ValueKind) valid() bool {
	return k >= KindNull && k <= KindBinary
}
