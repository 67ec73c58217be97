package proto

import (
	"errors"
	"testing"
)

// ============================================================
// Text Accessor Tests
// ============================================================

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    string
		wantErr bool
	}{
		{"simple string", SimpleString("foo"), "foo", false},
		{"utf-8 bulk string", BulkString([]byte("héllo")), "héllo", false},
		{"empty bulk string", BulkString([]byte{}), "", false},
		{"non-utf-8 bulk string", BulkString([]byte{0xff, 0xfe}), "", true},
		{"null bulk string", NullBulkString(), "", true},
		{"integer", Integer(7), "", true},
		{"error string", ErrorString("boom"), "", true},
		{"array", Array(SimpleString("x")), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Text()
			if tt.wantErr {
				if !errors.Is(err, ErrNotString) {
					t.Errorf("Text() error = %v, want ErrNotString", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Text() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================
// Int Accessor Tests
// ============================================================

func TestValue_Int(t *testing.T) {
	n, err := Integer(-42).Int()
	if err != nil {
		t.Fatalf("Int() error = %v", err)
	}
	if n != -42 {
		t.Errorf("Int() = %d, want -42", n)
	}

	for _, v := range []Value{
		SimpleString("42"),
		BulkString([]byte("42")),
		ErrorString("42"),
		Array(Integer(42)),
	} {
		if _, err := v.Int(); !errors.Is(err, ErrNotInteger) {
			t.Errorf("Int() on %s error = %v, want ErrNotInteger", v, err)
		}
	}
}

// ============================================================
// Elements Accessor Tests
// ============================================================

func TestValue_Elements(t *testing.T) {
	elems, err := Array(SimpleString("get"), SimpleString("k")).Elements()
	if err != nil {
		t.Fatalf("Elements() error = %v", err)
	}
	if len(elems) != 2 {
		t.Errorf("len(elems) = %d, want 2", len(elems))
	}

	if _, err := Array().Elements(); !errors.Is(err, ErrEmptyArray) {
		t.Errorf("empty array error = %v, want ErrEmptyArray", err)
	}
	if _, err := NullArray().Elements(); !errors.Is(err, ErrNotArray) {
		t.Errorf("null array error = %v, want ErrNotArray", err)
	}
	if _, err := SimpleString("x").Elements(); !errors.Is(err, ErrNotArray) {
		t.Errorf("simple string error = %v, want ErrNotArray", err)
	}
}

// ============================================================
// BulkBytes Accessor Tests
// ============================================================

func TestValue_BulkBytes(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x7f}
	b, ok := BulkString(raw).BulkBytes()
	if !ok {
		t.Fatal("BulkBytes() ok = false for non-null bulk string")
	}
	if string(b) != string(raw) {
		t.Errorf("BulkBytes() = %v, want %v", b, raw)
	}

	if _, ok := NullBulkString().BulkBytes(); ok {
		t.Error("BulkBytes() ok = true for null bulk string")
	}
	if _, ok := SimpleString("x").BulkBytes(); ok {
		t.Error("BulkBytes() ok = true for simple string")
	}
}

// ============================================================
// Equal Tests
// ============================================================

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal simple strings", SimpleString("a"), SimpleString("a"), true},
		{"different kinds", SimpleString("a"), ErrorString("a"), false},
		{"simple vs bulk with same text", SimpleString("a"), BulkString([]byte("a")), false},
		{"null vs empty bulk", NullBulkString(), BulkString([]byte{}), false},
		{"null vs empty array", NullArray(), Array(), false},
		{"equal nested arrays", Array(Array(Integer(1))), Array(Array(Integer(1))), true},
		{"different array lengths", Array(Integer(1)), Array(Integer(1), Integer(2)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
