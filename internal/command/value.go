package command

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/wirecache/wirecache/internal/proto"
)

// ValueKind identifies the payload variant a scalar Value holds.
type ValueKind int

const (
	// Num is a signed 64-bit integer payload.
	Num ValueKind = iota
	// Bytes is a raw byte payload (no UTF-8 requirement).
	Bytes
	// Str is a text payload.
	Str
)

// Value is the scalar payload accepted wherever a command needs one.
// It is derived from an integer, a non-null bulk string, or a simple
// string wire value; every other shape is rejected at conversion.
type Value struct {
	kind ValueKind
	num  int64
	b    []byte
	s    string
}

// NumValue returns an integer payload.
func NumValue(n int64) Value { return Value{kind: Num, num: n} }

// BytesValue returns a raw byte payload.
func BytesValue(b []byte) Value { return Value{kind: Bytes, b: b} }

// StrValue returns a text payload.
func StrValue(s string) Value { return Value{kind: Str, s: s} }

// ValueFrom converts a wire value into a scalar payload. A null bulk
// string fails with ErrNullValue; error strings and arrays fail with
// ErrWrongValueType.
func ValueFrom(v proto.Value) (Value, error) {
	switch v.Kind() {
	case proto.KindInteger:
		n, err := v.Int()
		if err != nil {
			return Value{}, err
		}
		return NumValue(n), nil
	case proto.KindBulkString:
		b, ok := v.BulkBytes()
		if !ok {
			return Value{}, ErrNullValue
		}
		return BytesValue(b), nil
	case proto.KindSimpleString:
		s, err := v.Text()
		if err != nil {
			return Value{}, err
		}
		return StrValue(s), nil
	default:
		return Value{}, fmt.Errorf("%w: %v", ErrWrongValueType, v)
	}
}

// Kind reports the payload variant.
func (v Value) Kind() ValueKind { return v.kind }

// Num returns the integer payload; zero for other variants.
func (v Value) Num() int64 { return v.num }

// Bytes returns the raw byte payload; nil for other variants.
func (v Value) Bytes() []byte { return v.b }

// Str returns the text payload; empty for other variants.
func (v Value) Str() string { return v.s }

// Encode returns the canonical byte form used by the storage layer:
// integers as their decimal text, text as its UTF-8 bytes, raw bytes
// unchanged.
func (v Value) Encode() []byte {
	switch v.kind {
	case Num:
		return strconv.AppendInt(nil, v.num, 10)
	case Bytes:
		return v.b
	default:
		return []byte(v.s)
	}
}

// Equal reports whether two payloads have the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Num:
		return v.num == o.num
	case Bytes:
		return bytes.Equal(v.b, o.b)
	default:
		return v.s == o.s
	}
}

// String renders the payload for logs and test failures.
func (v Value) String() string {
	switch v.kind {
	case Num:
		return fmt.Sprintf("Num(%d)", v.num)
	case Bytes:
		return fmt.Sprintf("Bytes(%q)", v.b)
	default:
		return fmt.Sprintf("Str(%q)", v.s)
	}
}
