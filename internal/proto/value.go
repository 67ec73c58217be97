package proto

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind identifies which of the five wire productions a Value holds.
// The values match the protocol's type prefix bytes.
type Kind byte

const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

// Accessor errors. Callers that need to tell the failure modes apart
// match with errors.Is.
var (
	ErrNotString  = errors.New("proto: not a string value")
	ErrNotInteger = errors.New("proto: not an integer value")
	ErrNotArray   = errors.New("proto: not an array value")
	ErrEmptyArray = errors.New("proto: empty array")
)

// Value is one decoded unit of the wire format. A Value is immutable
// once constructed and fully owns its payload; bulk strings and arrays
// distinguish null (the -1 length sentinel) from empty.
type Value struct {
	kind Kind
	null bool

	str  string
	num  int64
	bulk []byte
	arr  []Value
}

// SimpleString returns a simple string value ("+...\r\n").
func SimpleString(s string) Value {
	return Value{kind: KindSimpleString, str: s}
}

// ErrorString returns an error string value ("-...\r\n").
func ErrorString(s string) Value {
	return Value{kind: KindError, str: s}
}

// Integer returns an integer value (":...\r\n").
func Integer(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// BulkString returns a bulk string value. A nil slice yields the null
// bulk string ("$-1\r\n"); an empty non-nil slice yields the empty bulk
// string ("$0\r\n\r\n"). The two are never equal.
func BulkString(b []byte) Value {
	if b == nil {
		return NullBulkString()
	}
	return Value{kind: KindBulkString, bulk: b}
}

// NullBulkString returns the null bulk string.
func NullBulkString() Value {
	return Value{kind: KindBulkString, null: true}
}

// Array returns an array value containing the given elements in order.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// NullArray returns the null array ("*-1\r\n").
func NullArray() Value {
	return Value{kind: KindArray, null: true}
}

// Kind reports which production the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is a null bulk string or null array.
func (v Value) IsNull() bool { return v.null }

// Text returns the value as UTF-8 text. It succeeds for simple strings
// and for non-null bulk strings whose bytes are valid UTF-8; every
// other shape fails with ErrNotString.
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindSimpleString:
		return v.str, nil
	case KindBulkString:
		if v.null {
			return "", fmt.Errorf("%w: null bulk string", ErrNotString)
		}
		if !utf8.Valid(v.bulk) {
			return "", fmt.Errorf("%w: bulk string is not valid utf-8", ErrNotString)
		}
		return string(v.bulk), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotString, v.kind.name())
	}
}

// Int returns the value as a signed 64-bit integer. Only integer values
// succeed.
func (v Value) Int() (int64, error) {
	if v.kind != KindInteger {
		return 0, fmt.Errorf("%w: %s", ErrNotInteger, v.kind.name())
	}
	return v.num, nil
}

// Elements returns the elements of a non-null, non-empty array. A null
// array and any non-array value fail with ErrNotArray; a present but
// empty array fails with ErrEmptyArray.
func (v Value) Elements() ([]Value, error) {
	if v.kind != KindArray || v.null {
		return nil, fmt.Errorf("%w: %s", ErrNotArray, v.kind.name())
	}
	if len(v.arr) == 0 {
		return nil, ErrEmptyArray
	}
	return v.arr, nil
}

// BulkBytes returns the raw payload of a non-null bulk string. The
// second result is false for null bulk strings and non-bulk values.
// Unlike Text, no UTF-8 requirement applies.
func (v Value) BulkBytes() ([]byte, bool) {
	if v.kind != KindBulkString || v.null {
		return nil, false
	}
	return v.bulk, true
}

// ErrorText returns the text of an error string value, or "" for any
// other shape.
func (v Value) ErrorText() string {
	if v.kind != KindError {
		return ""
	}
	return v.str
}

// Equal reports whether two values are structurally identical,
// including the null/empty distinction for bulk strings and arrays.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.null != o.null {
		return false
	}
	switch v.kind {
	case KindSimpleString, KindError:
		return v.str == o.str
	case KindInteger:
		return v.num == o.num
	case KindBulkString:
		return v.null || bytes.Equal(v.bulk, o.bulk)
	case KindArray:
		if v.null {
			return true
		}
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for logs and test failures.
func (v Value) String() string {
	switch v.kind {
	case KindSimpleString:
		return fmt.Sprintf("SimpleString(%q)", v.str)
	case KindError:
		return fmt.Sprintf("Error(%q)", v.str)
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.num)
	case KindBulkString:
		if v.null {
			return "BulkString(null)"
		}
		return fmt.Sprintf("BulkString(%q)", v.bulk)
	case KindArray:
		if v.null {
			return "Array(null)"
		}
		var b bytes.Buffer
		b.WriteString("Array[")
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteString("]")
		return b.String()
	default:
		return fmt.Sprintf("Value(%#x)", byte(v.kind))
	}
}

func (k Kind) name() string {
	switch k {
	case KindSimpleString:
		return "simple string"
	case KindError:
		return "error string"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}
