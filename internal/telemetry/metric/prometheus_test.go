package metric

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistersMetrics(t *testing.T) {
	m := New()

	// Touch a few metrics so vectors materialize series.
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Set(3)
	m.CommandsTotal.WithLabelValues("get").Inc()
	m.CommandDuration.WithLabelValues("get").Observe(0.001)
	m.DecodeErrors.Inc()

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"wirecache_server_connections_active":       false,
		"wirecache_server_connections_total":        false,
		"wirecache_server_commands_total":           false,
		"wirecache_server_command_duration_seconds": false,
		"wirecache_proto_decode_errors_total":       false,
		"go_goroutines":                             false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.CommandsTotal.WithLabelValues("set").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `wirecache_server_commands_total{command="set"} 1`) {
		t.Errorf("exposition missing command counter:\n%s", body)
	}
}
