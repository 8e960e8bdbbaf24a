package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromFileParsesFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "clip.info.json")
	body := `{"title":"A Clip","uploader":"someone","duration":93.4,"filesize_approx":1048576}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := FromFile(p)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if info.Title != "A Clip" || info.Uploader != "someone" {
		t.Fatalf("info=%+v", info)
	}
	if info.DurationSec() != 93 {
		t.Fatalf("DurationSec=%d", info.DurationSec())
	}
	if info.SizeBytes() != 1048576 {
		t.Fatalf("SizeBytes=%d", info.SizeBytes())
	}
}

func TestSizePrefersExact(t *testing.T) {
	m := &MediaInfo{Filesize: 10, FilesizeApprox: 99}
	if m.SizeBytes() != 10 {
		t.Fatalf("SizeBytes=%d", m.SizeBytes())
	}
}

func TestFromDirPicksNewest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.info.json")
	if err := os.WriteFile(old, []byte(`{"title":"old"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.info.json"), []byte(`{"title":"new"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir: %v", err)
	}
	if info.Title != "new" {
		t.Fatalf("picked %q", info.Title)
	}
}

func TestFromDirEmpty(t *testing.T) {
	if _, err := FromDir(t.TempDir()); !errors.Is(err, ErrNoInfoFile) {
		t.Fatalf("err=%v", err)
	}
}
