package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Addr        string        `koanf:"addr"`
		IdleTimeout time.Duration `koanf:"idle_timeout"`
	} `koanf:"server"`
	Storage struct {
		Engine string `koanf:"engine"`
	} `koanf:"storage"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/tmp/c.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want TEST_", l.envPrefix)
	}
	if l.filePath != "/tmp/c.yaml" {
		t.Errorf("filePath = %q, want /tmp/c.yaml", l.filePath)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "0.0.0.0:6380"
  idle_timeout: 2m
storage:
  engine: badger
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:6380" {
		t.Errorf("server.addr = %q, want 0.0.0.0:6380", cfg.Server.Addr)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("server.idle_timeout = %v, want 2m", cfg.Server.IdleTimeout)
	}
	if cfg.Storage.Engine != "badger" {
		t.Errorf("storage.engine = %q, want badger", cfg.Storage.Engine)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() error = nil for missing file")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "127.0.0.1:6379"
`)

	t.Setenv("WIRECACHE_SERVER_ADDR", "0.0.0.0:7000")

	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("server.addr = %q, env should override file", cfg.Server.Addr)
	}
}

func TestLoadMapOverridesEnv(t *testing.T) {
	t.Setenv("WIRECACHE_STORAGE_ENGINE", "memory")

	l := NewLoader()

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := l.LoadMap(map[string]any{"storage.engine": "badger"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Storage.Engine != "badger" {
		t.Errorf("storage.engine = %q, map should override env", cfg.Storage.Engine)
	}
}

func TestAccessors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"server.addr":     "h:1",
		"metrics.enabled": true,
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("server.addr"); got != "h:1" {
		t.Errorf("GetString() = %q, want h:1", got)
	}
	if !l.GetBool("metrics.enabled") {
		t.Error("GetBool() = false, want true")
	}
	if len(l.All()) != 2 {
		t.Errorf("All() has %d keys, want 2", len(l.All()))
	}
}
