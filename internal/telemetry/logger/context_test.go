package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerContext(t *testing.T) {
	l := New(DefaultConfig())

	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext() did not return the stored logger")
	}

	// Without a stored logger, the default is returned.
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext() on empty context did not return slog.Default()")
	}
}

func TestConnIDContext(t *testing.T) {
	ctx := WithConnID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if got := ConnIDFromContext(ctx); got != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("ConnIDFromContext() = %q", got)
	}

	if got := ConnIDFromContext(context.Background()); got != "" {
		t.Errorf("ConnIDFromContext() on empty context = %q, want empty", got)
	}
}

func TestL(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithConnID(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")

	L(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"conn_id":"01ARZ3NDEKTSV4RRFFQ69G5FAV"`) {
		t.Errorf("L() output %q missing conn_id", out)
	}

	// Without a conn id the logger comes through untagged.
	buf.Reset()
	L(WithLogger(context.Background(), l)).Info("plain")
	if strings.Contains(buf.String(), "conn_id") {
		t.Errorf("L() output %q has unexpected conn_id", buf.String())
	}
}
