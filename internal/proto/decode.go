package proto

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxDepth bounds array nesting so adversarially deep input cannot
// exhaust the stack.
const MaxDepth = 64

// MaxBulkLen caps a single bulk payload at 512 MiB. A forged length
// above this fails structurally instead of buffering forever.
const MaxBulkLen = 512 << 20

// Decode errors. ErrIncomplete means the buffer ended mid-value and the
// caller should read more bytes and retry; all other errors are
// structural and will not resolve with more input.
var (
	ErrIncomplete    = errors.New("proto: incomplete value")
	ErrBadPrefix     = errors.New("proto: invalid type prefix")
	ErrBadLine       = errors.New("proto: malformed line")
	ErrBadInteger    = errors.New("proto: invalid integer")
	ErrBadLength     = errors.New("proto: invalid length")
	ErrDepthExceeded = errors.New("proto: nesting too deep")
)

var crlf = []byte("\r\n")

// arrayAllocCap limits the pre-allocation for array decoding; a forged
// count must not allocate before its elements actually arrive.
const arrayAllocCap = 1024

// Decode parses exactly one wire value from the front of data and
// returns it together with the unconsumed remainder. Trailing bytes
// beyond the first complete value are not examined, so a caller can
// decode pipelined values back to back by feeding the remainder into
// the next call.
func Decode(data []byte) (Value, []byte, error) {
	return decode(data, 0)
}

func decode(data []byte, depth int) (Value, []byte, error) {
	if depth > MaxDepth {
		return Value{}, nil, fmt.Errorf("%w: more than %d levels", ErrDepthExceeded, MaxDepth)
	}
	if len(data) == 0 {
		return Value{}, nil, ErrIncomplete
	}

	switch data[0] {
	case '+':
		line, rest, err := readLine(data[1:])
		if err != nil {
			return Value{}, nil, err
		}
		return SimpleString(line), rest, nil

	case '-':
		line, rest, err := readLine(data[1:])
		if err != nil {
			return Value{}, nil, err
		}
		return ErrorString(line), rest, nil

	case ':':
		line, rest, err := readLine(data[1:])
		if err != nil {
			return Value{}, nil, err
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return Value{}, nil, fmt.Errorf("%w: %q", ErrBadInteger, line)
		}
		return Integer(n), rest, nil

	case '$':
		return decodeBulk(data[1:])

	case '*':
		return decodeArray(data[1:], depth)

	default:
		return Value{}, nil, fmt.Errorf("%w: %q", ErrBadPrefix, data[0])
	}
}

func decodeBulk(data []byte) (Value, []byte, error) {
	n, rest, err := readLength(data)
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		return NullBulkString(), rest, nil
	}
	if n > MaxBulkLen {
		return Value{}, nil, fmt.Errorf("%w: bulk length %d exceeds maximum", ErrBadLength, n)
	}
	// Compare by subtraction: n+2 would wrap for a length near the
	// int64 maximum.
	if int64(len(rest))-2 < n {
		return Value{}, nil, ErrIncomplete
	}
	if !bytes.Equal(rest[n:n+2], crlf) {
		return Value{}, nil, fmt.Errorf("%w: bulk string missing CRLF terminator", ErrBadLine)
	}
	// Copy the payload: decoded values outlive the caller's read buffer.
	payload := make([]byte, n)
	copy(payload, rest[:n])
	return BulkString(payload), rest[n+2:], nil
}

func decodeArray(data []byte, depth int) (Value, []byte, error) {
	n, rest, err := readLength(data)
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		return NullArray(), rest, nil
	}
	elems := make([]Value, 0, min(n, arrayAllocCap))
	for i := int64(0); i < n; i++ {
		var elem Value
		elem, rest, err = decode(rest, depth+1)
		if err != nil {
			return Value{}, nil, err
		}
		elems = append(elems, elem)
	}
	return Array(elems...), rest, nil
}

// readLine consumes one CRLF-terminated line and returns its text and
// the bytes after the terminator. The text must be valid UTF-8 and may
// not contain a carriage return; a bare LF does not terminate a line.
func readLine(data []byte) (string, []byte, error) {
	i := bytes.IndexByte(data, '\r')
	if i < 0 || i+1 >= len(data) {
		return "", nil, ErrIncomplete
	}
	if data[i+1] != '\n' {
		return "", nil, fmt.Errorf("%w: CR not followed by LF", ErrBadLine)
	}
	if !utf8.Valid(data[:i]) {
		return "", nil, fmt.Errorf("%w: invalid utf-8", ErrBadLine)
	}
	return string(data[:i]), data[i+2:], nil
}

// readLength parses a signed decimal length line. -1 is the null
// sentinel; any other negative length is a protocol error.
func readLength(data []byte) (int64, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return 0, nil, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q", ErrBadLength, line)
	}
	if n < -1 {
		return 0, nil, fmt.Errorf("%w: negative length %d", ErrBadLength, n)
	}
	return n, rest, nil
}
