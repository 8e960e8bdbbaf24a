package metadata

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// MediaInfo is the subset of yt-dlp's info JSON the registry records.
type MediaInfo struct {
	Title          string  `json:"title"`
	Uploader       string  `json:"uploader"`
	Duration       float64 `json:"duration"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// DurationSec rounds the duration to whole seconds.
func (m *MediaInfo) DurationSec() int64 {
	return int64(m.Duration + 0.5)
}

// SizeBytes prefers the exact filesize, falling back to the approximation.
func (m *MediaInfo) SizeBytes() int64 {
	if m.Filesize > 0 {
		return m.Filesize
	}
	return m.FilesizeApprox
}

// ErrNoInfoFile is returned when a save directory holds no info JSON.
var ErrNoInfoFile = errors.New("no info JSON found")

// FromDir parses the most recently written *.info.json in dir. yt-dlp
// writes one per download when invoked with --write-info-json.
func FromDir(dir string) (*MediaInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.info.json"))
	if err != nil {
		return nil, err
	}
	var newest string
	var newestMod int64
	for _, p := range matches {
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		if newest == "" || st.ModTime().UnixNano() > newestMod {
			newest = p
			newestMod = st.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return nil, ErrNoInfoFile
	}
	return FromFile(newest)
}

// FromFile parses a single yt-dlp info JSON file.
func FromFile(path string) (*MediaInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info MediaInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
