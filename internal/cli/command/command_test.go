package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wirecache/wirecache/internal/proto"
	"github.com/wirecache/wirecache/internal/server"
	"github.com/wirecache/wirecache/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()

	store := memory.New()
	t.Cleanup(func() { store.Close() })

	cfg := server.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	srv := server.New(cfg, store, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return srv.Addr().String()
}

// runCLI executes the app with args and returns its stdout.
func runCLI(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := App()
	app.Writer = &out

	argv := append([]string{"wirecache-cli", "--server", addr}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func TestCLISetGet(t *testing.T) {
	addr := startServer(t)

	out, err := runCLI(t, addr, "set", "foo", "hello")
	if err != nil {
		t.Fatalf("set error = %v", err)
	}
	if strings.TrimSpace(out) != "OK" {
		t.Errorf("set output = %q, want OK", out)
	}

	out, err = runCLI(t, addr, "get", "foo")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("get output = %q, want hello", out)
	}

	out, err = runCLI(t, addr, "get", "missing")
	if err != nil {
		t.Fatalf("get missing error = %v", err)
	}
	if strings.TrimSpace(out) != "(nil)" {
		t.Errorf("get missing output = %q, want (nil)", out)
	}
}

func TestCLISetNX(t *testing.T) {
	addr := startServer(t)

	if _, err := runCLI(t, addr, "set", "--nx", "k", "a"); err != nil {
		t.Fatalf("first set --nx error = %v", err)
	}

	out, err := runCLI(t, addr, "set", "--nx", "k", "b")
	if err != nil {
		t.Fatalf("second set --nx error = %v", err)
	}
	if strings.TrimSpace(out) != "(nil)" {
		t.Errorf("second set --nx output = %q, want (nil)", out)
	}
}

func TestCLISetExpiry(t *testing.T) {
	addr := startServer(t)

	if _, err := runCLI(t, addr, "set", "--px", "30", "k", "v"); err != nil {
		t.Fatalf("set --px error = %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	out, err := runCLI(t, addr, "get", "k")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if strings.TrimSpace(out) != "(nil)" {
		t.Errorf("get after expiry output = %q, want (nil)", out)
	}
}

func TestCLICounts(t *testing.T) {
	addr := startServer(t)

	runCLI(t, addr, "set", "a", "hello")
	runCLI(t, addr, "set", "b", "x")

	out, err := runCLI(t, addr, "strlen", "a")
	if err != nil {
		t.Fatalf("strlen error = %v", err)
	}
	if strings.TrimSpace(out) != "(integer) 5" {
		t.Errorf("strlen output = %q, want (integer) 5", out)
	}

	out, err = runCLI(t, addr, "del", "a", "b", "missing")
	if err != nil {
		t.Fatalf("del error = %v", err)
	}
	if strings.TrimSpace(out) != "(integer) 2" {
		t.Errorf("del output = %q, want (integer) 2", out)
	}
}

func TestCLIPing(t *testing.T) {
	addr := startServer(t)

	out, err := runCLI(t, addr, "ping")
	if err != nil {
		t.Fatalf("ping error = %v", err)
	}
	if strings.TrimSpace(out) != "PONG" {
		t.Errorf("ping output = %q, want PONG", out)
	}
}

func TestCLIErrorReply(t *testing.T) {
	addr := startServer(t)

	_, err := runCLI(t, addr, "getset", "k")
	if err == nil {
		t.Error("getset with one arg did not fail")
	}
}

func TestCLIFlagValidation(t *testing.T) {
	addr := startServer(t)

	if _, err := runCLI(t, addr, "set", "--nx", "--xx", "k", "v"); err == nil {
		t.Error("set --nx --xx did not fail")
	}
	if _, err := runCLI(t, addr, "set", "--ex", "1", "--px", "1000", "k", "v"); err == nil {
		t.Error("set --ex --px did not fail")
	}
}

func TestFormatReply(t *testing.T) {
	tests := []struct {
		name string
		in   proto.Value
		want string
	}{
		{"simple string", proto.SimpleString("OK"), "OK"},
		{"bulk string", proto.BulkString([]byte("abc")), "abc"},
		{"null bulk", proto.NullBulkString(), "(nil)"},
		{"integer", proto.Integer(42), "(integer) 42"},
		{
			"array",
			proto.Array(proto.BulkString([]byte("a")), proto.Integer(1)),
			"1) a\n2) (integer) 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatReply(tt.in)
			if err != nil {
				t.Fatalf("formatReply() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("formatReply() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("error reply", func(t *testing.T) {
		if _, err := formatReply(proto.ErrorString("ERR boom")); err == nil {
			t.Error("formatReply() error = nil for error value")
		}
	})
}
