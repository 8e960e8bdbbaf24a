package downloader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	derr "dow/internal/errors"
	"dow/internal/logging"
	"dow/internal/util"
)

// Result is the JSON payload the backend returns for a submission. The
// client renders it verbatim, so the shape is part of the wire contract.
// VideoFilename is nil when no merged output file could be identified.
type Result struct {
	Status        string  `json:"status"`
	Output        string  `json:"output,omitempty"`
	VideoFilename *string `json:"video_filename"`
	Error         string  `json:"error,omitempty"`
}

// Runner executes one download for a URL.
type Runner interface {
	Run(ctx context.Context, url string) (*Result, error)
}

// YTDLP shells out to yt-dlp and files the output under
// root/<sanitized-host>/<YYYY-MM-DD>/.
type YTDLP struct {
	root string
	bin  string
	log  *logging.Logger
	now  func() time.Time
}

func New(root, bin string, log *logging.Logger) *YTDLP {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YTDLP{root: root, bin: bin, log: log, now: time.Now}
}

// SavePath returns the directory a download of url lands in.
func (d *YTDLP) SavePath(url string) string {
	return filepath.Join(d.root, util.SanitizeFilename(util.HostOf(url)), util.DateFolder(d.now()))
}

// Run downloads url. A failing yt-dlp invocation is reported inside the
// Result, not as an error; only precondition and environment problems
// (empty URL, missing binary) surface as errors.
func (d *YTDLP) Run(ctx context.Context, url string) (*Result, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("empty URL provided")
	}
	d.log.Infof("starting download for %s", logging.SanitizeURL(url))

	savePath := d.SavePath(url)
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, derr.PathError(savePath, err)
	}

	cmd := exec.CommandContext(ctx, d.bin,
		"--no-playlist",
		"--write-thumbnail",
		"--write-info-json",
		"--output", filepath.Join(savePath, "%(title).70s.%(ext)s"),
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			d.log.Errorf("yt-dlp failed: %s", strings.TrimSpace(stderr.String()))
			return &Result{Status: "error", Error: stderr.String()}, nil
		}
		return nil, derr.ToolError(d.bin, err)
	}
	d.log.Infof("download complete")

	res := &Result{Status: "success", Output: stdout.String()}
	if abs, ok := parseMergedPath(stdout.String()); ok {
		if rel, err := filepath.Rel(d.root, abs); err == nil {
			d.log.Infof("final video file: %s", rel)
			res.VideoFilename = &rel
		}
	}
	return res, nil
}

// parseMergedPath scans yt-dlp output for the ffmpeg merge line and
// extracts the quoted destination path.
func parseMergedPath(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Merging formats into") || !strings.Contains(line, ".mp4") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 2 && parts[1] != "" {
			return parts[1], true
		}
	}
	return "", false
}
