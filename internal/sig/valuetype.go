// Package sig defines wasm value types and the dual-width signature
// reconciliation that turns them into compact tag strings.
package sig

import "fmt"

// ValueType is a core wasm value type, encoded as in the binary format.
type ValueType byte

const (
	// I32 is a 32-bit integer.
	I32 ValueType = 0x7F
	// I64 is a 64-bit integer.
	I64 ValueType = 0x7E
	// F32 is a 32-bit float.
	F32 ValueType = 0x7D
	// F64 is a 64-bit float.
	F64 ValueType = 0x7C
)

func (t ValueType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("valuetype(0x%02x)", byte(t))
	}
}

// Valid reports whether t is one of the four core value types.
func (t ValueType) Valid() bool {
	switch t {
	case I32, I64, F32, F64:
		return true
	default:
		return false
	}
}

// Tag returns the signature character for a value type that resolved to
// the same width under both pointer-width targets. The pointer tag 'p'
// is never produced here; it only exists as a reconciliation result.
func (t ValueType) Tag() (byte, bool) {
	switch t {
	case I32:
		return 'i', true
	case I64:
		return 'j', true
	case F32:
		return 'f', true
	case F64:
		return 'd', true
	default:
		return 0, false
	}
}
