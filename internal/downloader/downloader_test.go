package downloader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dow/internal/logging"
)

func quietLog() *logging.Logger {
	return logging.NewWithWriter("error", false, discard{})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// stubTool writes an executable shell script standing in for yt-dlp.
func stubTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not supported on windows")
	}
	p := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseMergedPath(t *testing.T) {
	cases := []struct {
		out  string
		want string
		ok   bool
	}{
		{`[Merger] Merging formats into "/dl/host/2025-01-02/clip.mp4"`, "/dl/host/2025-01-02/clip.mp4", true},
		{"[download] 100% of 3.00MiB", "", false},
		{`Merging formats into "/dl/a.mkv"`, "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := parseMergedPath(c.out)
		if got != c.want || ok != c.ok {
			t.Fatalf("parseMergedPath(%q)=(%q,%v) want (%q,%v)", c.out, got, ok, c.want, c.ok)
		}
	}
}

func TestRunRejectsEmptyURL(t *testing.T) {
	d := New(t.TempDir(), "yt-dlp", quietLog())
	if _, err := d.Run(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestRunSuccessWithMergedFile(t *testing.T) {
	root := t.TempDir()
	// Merge line points inside root so the relative path is short.
	bin := stubTool(t, "echo '[Merger] Merging formats into \""+root+"/h/2025-01-02/clip.mp4\"'")

	d := New(root, bin, quietLog())
	res, err := d.Run(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != "success" {
		t.Fatalf("status=%s", res.Status)
	}
	if res.VideoFilename == nil || *res.VideoFilename != "h/2025-01-02/clip.mp4" {
		t.Fatalf("video_filename=%v", res.VideoFilename)
	}
	if _, err := os.Stat(d.SavePath("https://example.com/v")); err != nil {
		t.Fatalf("save path not created: %v", err)
	}
}

func TestRunSuccessWithoutMergeLine(t *testing.T) {
	bin := stubTool(t, "echo '[download] Destination: audio.m4a'")
	d := New(t.TempDir(), bin, quietLog())
	res, err := d.Run(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != "success" || res.VideoFilename != nil {
		t.Fatalf("res=%+v", res)
	}
	if !strings.Contains(res.Output, "Destination") {
		t.Fatalf("output not captured: %q", res.Output)
	}
}

func TestRunToolFailureBecomesErrorResult(t *testing.T) {
	bin := stubTool(t, "echo 'ERROR: Unsupported URL' >&2; exit 1")
	d := New(t.TempDir(), bin, quietLog())
	res, err := d.Run(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("exit failure should be reported in-band: %v", err)
	}
	if res.Status != "error" || !strings.Contains(res.Error, "Unsupported URL") {
		t.Fatalf("res=%+v", res)
	}
}

func TestRunMissingBinaryIsError(t *testing.T) {
	d := New(t.TempDir(), filepath.Join(t.TempDir(), "nope-such-tool"), quietLog())
	if _, err := d.Run(context.Background(), "https://example.com/v"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
