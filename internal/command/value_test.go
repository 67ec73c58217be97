package command

import (
	"errors"
	"testing"

	"github.com/wirecache/wirecache/internal/proto"
)

// ============================================================
// ValueFrom Tests
// ============================================================

func TestValueFrom(t *testing.T) {
	tests := []struct {
		name  string
		input proto.Value
		want  Value
	}{
		{"integer", proto.Integer(456), NumValue(456)},
		{"negative integer", proto.Integer(-1), NumValue(-1)},
		{"bulk string", proto.BulkString([]byte("Hello")), BytesValue([]byte("Hello"))},
		{"empty bulk string", proto.BulkString([]byte{}), BytesValue([]byte{})},
		{"binary bulk string", proto.BulkString([]byte{0xff, 0x00}), BytesValue([]byte{0xff, 0x00})},
		{"simple string", proto.SimpleString("fine"), StrValue("fine")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueFrom(tt.input)
			if err != nil {
				t.Fatalf("ValueFrom() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ValueFrom() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValueFrom_Invalid(t *testing.T) {
	if _, err := ValueFrom(proto.NullBulkString()); !errors.Is(err, ErrNullValue) {
		t.Errorf("null bulk error = %v, want ErrNullValue", err)
	}
	for _, in := range []proto.Value{
		proto.ErrorString("boom"),
		proto.Array(proto.Integer(1)),
		proto.NullArray(),
	} {
		if _, err := ValueFrom(in); !errors.Is(err, ErrWrongValueType) {
			t.Errorf("ValueFrom(%s) error = %v, want ErrWrongValueType", in, err)
		}
	}
}

// ============================================================
// Encode Tests
// ============================================================

func TestValue_Encode(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{NumValue(456), "456"},
		{NumValue(-7), "-7"},
		{BytesValue([]byte("raw")), "raw"},
		{StrValue("text"), "text"},
	}

	for _, tt := range tests {
		if got := string(tt.value.Encode()); got != tt.want {
			t.Errorf("%s.Encode() = %q, want %q", tt.value, got, tt.want)
		}
	}
}
