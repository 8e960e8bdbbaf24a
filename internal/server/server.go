package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dow/internal/config"
	"dow/internal/downloader"
	"dow/internal/logging"
	"dow/internal/metadata"
	"dow/internal/metrics"
	"dow/internal/state"
	"dow/internal/util"
)

// Server wires the download runner, the job registry and static serving
// behind one HTTP surface.
type Server struct {
	cfg    *config.Config
	log    *logging.Logger
	db     *state.DB
	runner downloader.Runner
	met    *metrics.Manager
}

func New(cfg *config.Config, log *logging.Logger, db *state.DB, runner downloader.Runner, met *metrics.Manager) *Server {
	return &Server{cfg: cfg, log: log, db: db, runner: runner, met: met}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Post("/download", s.handleDownload)
	r.Get("/downloads", s.handleListDownloads)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.Server.StaticRoot != "" {
		r.NotFound(s.serveStatic)
	}
	return r
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.met.IncRequests()

	var req struct {
		URL *string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'url' in request."})
		return
	}
	url := *req.URL
	s.log.Infof("received download request for %s", logging.SanitizeURL(url))

	jobID, err := s.db.CreateJob(url, util.HostOf(url))
	if err != nil {
		s.log.Errorf("registry insert failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := s.runner.Run(r.Context(), url)
	if err != nil {
		// Precondition or environment failure, mirrors an unhandled
		// exception in the download step.
		s.log.Errorf("error during download: %v", err)
		_ = s.db.FailJob(jobID, err.Error())
		s.met.IncDownloadsError()
		s.writeMetrics()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.met.ObserveDownloadSeconds(time.Since(start).Seconds())

	if res.Status == "error" {
		_ = s.db.FailJob(jobID, res.Error)
		s.met.IncDownloadsError()
	} else {
		videoPath := ""
		if res.VideoFilename != nil {
			videoPath = *res.VideoFilename
		}
		_ = s.db.CompleteJob(jobID, videoPath)
		s.enrichJob(jobID, url)
		s.met.IncDownloadsSuccess()
	}
	s.writeMetrics()

	// The tool's own failure is part of the payload, not an HTTP error.
	writeJSON(w, http.StatusOK, res)
}

// enrichJob lifts title/uploader/duration/size from the info JSON yt-dlp
// wrote next to the video. Best effort only.
func (s *Server) enrichJob(jobID int64, url string) {
	dirProvider, ok := s.runner.(interface{ SavePath(string) string })
	if !ok {
		return
	}
	info, err := metadata.FromDir(dirProvider.SavePath(url))
	if err != nil {
		s.log.Debugf("no media info for job %d: %v", jobID, err)
		return
	}
	if err := s.db.SetMediaInfo(jobID, info.Title, info.Uploader, info.DurationSec(), info.SizeBytes()); err != nil {
		s.log.Warnf("media info update failed for job %d: %v", jobID, err)
	}
}

type jobJSON struct {
	ID            int64  `json:"id"`
	URL           string `json:"url"`
	Host          string `json:"host"`
	Status        string `json:"status"`
	VideoFilename string `json:"video_filename"`
	Title         string `json:"title"`
	Uploader      string `json:"uploader"`
	DurationSec   int64  `json:"duration_sec"`
	SizeBytes     int64  `json:"size_bytes"`
	Error         string `json:"error"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListJobs()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]jobJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, jobJSON{
			ID:            row.ID,
			URL:           row.URL,
			Host:          row.Host,
			Status:        row.Status,
			VideoFilename: row.VideoPath,
			Title:         row.Title,
			Uploader:      row.Uploader,
			DurationSec:   row.DurationSec,
			SizeBytes:     row.SizeBytes,
			Error:         row.LastError,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// serveStatic serves the built web client. Unknown paths fall back to
// index.html so client-side routes resolve.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	root := s.cfg.Server.StaticRoot
	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	full := filepath.Join(root, rel)
	if rel != "" && rel != "." {
		if fi, err := os.Stat(full); err == nil && !fi.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
	}
	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		s.log.Warnf("index.html not found under %s", root)
		http.Error(w, "Internal Server Error: Frontend build not found.", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, index)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infof("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) writeMetrics() {
	if err := s.met.Write(); err != nil {
		s.log.Warnf("metrics write failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
