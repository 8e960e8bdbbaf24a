package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dow/internal/config"
)

// Manager accumulates dowd counters and publishes them as a Prometheus
// textfile. A nil Manager is valid and drops everything.
type Manager struct {
	path string
	mu   sync.Mutex
	// counters
	requestsTotal    int64
	downloadsSuccess int64
	downloadsError   int64
	lastDownloadSec  float64
}

func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.PrometheusTextfile.Enabled || cfg.Metrics.PrometheusTextfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.PrometheusTextfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return &Manager{path: p}
}

func (m *Manager) IncRequests() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.requestsTotal++
	m.mu.Unlock()
}

func (m *Manager) IncDownloadsSuccess() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.downloadsSuccess++
	m.mu.Unlock()
}

func (m *Manager) IncDownloadsError() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.downloadsError++
	m.mu.Unlock()
}

func (m *Manager) ObserveDownloadSeconds(sec float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.lastDownloadSec = sec
	m.mu.Unlock()
}

func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.CreateTemp(filepath.Dir(m.path), ".metrics.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	fmt.Fprintf(f, "# HELP dow_requests_total Total download requests received.\n")
	fmt.Fprintf(f, "# TYPE dow_requests_total counter\n")
	fmt.Fprintf(f, "dow_requests_total %d\n", m.requestsTotal)

	fmt.Fprintf(f, "# HELP dow_downloads_success_total Total successful downloads.\n")
	fmt.Fprintf(f, "# TYPE dow_downloads_success_total counter\n")
	fmt.Fprintf(f, "dow_downloads_success_total %d\n", m.downloadsSuccess)

	fmt.Fprintf(f, "# HELP dow_downloads_error_total Total failed downloads.\n")
	fmt.Fprintf(f, "# TYPE dow_downloads_error_total counter\n")
	fmt.Fprintf(f, "dow_downloads_error_total %d\n", m.downloadsError)

	fmt.Fprintf(f, "# HELP dow_last_download_seconds Duration of the last completed download in seconds.\n")
	fmt.Fprintf(f, "# TYPE dow_last_download_seconds gauge\n")
	fmt.Fprintf(f, "dow_last_download_seconds %.6f\n", m.lastDownloadSec)

	fmt.Fprintf(f, "# HELP dow_metrics_timestamp_seconds UNIX timestamp when this file was written.\n")
	fmt.Fprintf(f, "# TYPE dow_metrics_timestamp_seconds gauge\n")
	fmt.Fprintf(f, "dow_metrics_timestamp_seconds %d\n", time.Now().Unix())

	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), m.path)
}
