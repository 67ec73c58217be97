package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "info", Format: "json", Output: &buf})
	l.Info("hello", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want value", entry["key"])
	}
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "info", Format: "text", Output: &buf})
	l.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output missing message: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "warn", Format: "json", Output: &buf})
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn not logged at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "info", Format: "json", Output: &buf})

	SetLevel("debug")
	defer SetLevel("info")

	l.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug not logged after SetLevel(debug)")
	}
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in).String(); got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
