package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dow/internal/config"
)

func TestNilManagerIsNoOp(t *testing.T) {
	var m *Manager
	m.IncRequests()
	m.IncDownloadsSuccess()
	if err := m.Write(); err != nil {
		t.Fatalf("nil Write: %v", err)
	}
}

func TestDisabledConfigYieldsNil(t *testing.T) {
	if New(config.Default()) != nil {
		t.Fatal("expected nil manager when metrics disabled")
	}
}

func TestWriteTextfile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dow.prom")
	cfg := config.Default()
	cfg.Metrics.PrometheusTextfile.Enabled = true
	cfg.Metrics.PrometheusTextfile.Path = p

	m := New(cfg)
	m.IncRequests()
	m.IncRequests()
	m.IncDownloadsSuccess()
	m.IncDownloadsError()
	m.ObserveDownloadSeconds(1.5)
	if err := m.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{
		"dow_requests_total 2",
		"dow_downloads_success_total 1",
		"dow_downloads_error_total 1",
		"dow_last_download_seconds 1.5",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
