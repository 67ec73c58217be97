package proto

import (
	"bufio"
	"strconv"
	"strings"
)

// Encode serializes a value into its wire representation.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire representation of v to dst and returns
// the extended slice. Simple and error string text has CR and LF
// replaced with spaces so the emitted frame stays parseable.
func AppendValue(dst []byte, v Value) []byte {
	switch v.kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, sanitizeLine(v.str)...)
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, sanitizeLine(v.str)...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.num, 10)
	case KindBulkString:
		if v.null {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.bulk...)
	case KindArray:
		if v.null {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.arr)), 10)
		dst = append(dst, crlf...)
		for _, elem := range v.arr {
			dst = AppendValue(dst, elem)
		}
		return dst
	}
	return append(dst, crlf...)
}

// WriteValue writes the wire representation of v.
func WriteValue(w *bufio.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + sanitizeLine(s) + "\r\n")
	return err
}

func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + sanitizeLine(s) + "\r\n")
	return err
}

func WriteInteger(w *bufio.Writer, n int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(n, 10) + "\r\n")
	return err
}

func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

func WriteBulk(w *bufio.Writer, b []byte) error {
	if b == nil {
		return WriteNullBulk(w)
	}
	if _, err := w.WriteString("$" + strconv.Itoa(len(b)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func WriteBulkString(w *bufio.Writer, s string) error {
	return WriteBulk(w, []byte(s))
}

func WriteArrayHeader(w *bufio.Writer, n int) error {
	_, err := w.WriteString("*" + strconv.Itoa(n) + "\r\n")
	return err
}

var lineSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// sanitizeLine keeps line-framed text free of CR and LF. Payloads that
// need either byte belong in a bulk string.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return lineSanitizer.Replace(s)
}
