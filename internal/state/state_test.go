package state

import (
	"testing"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestJobLifecycle(t *testing.T) {
	db := openTest(t)
	id, err := db.CreateJob("https://youtu.be/x", "youtu.be")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	jobs, err := db.ListJobs()
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != StatusRunning {
		t.Fatalf("jobs=%v", jobs)
	}

	if err := db.CompleteJob(id, "youtu.be/2025-01-02/clip.mp4"); err != nil {
		t.Fatalf("CompleteJob: %v", err)
	}
	if err := db.SetMediaInfo(id, "Clip", "someone", 93, 1<<20); err != nil {
		t.Fatalf("SetMediaInfo: %v", err)
	}
	jobs, _ = db.ListJobs()
	got := jobs[0]
	if got.Status != StatusSuccess || got.VideoPath == "" || got.Title != "Clip" || got.SizeBytes != 1<<20 {
		t.Fatalf("row=%+v", got)
	}
}

func TestFailJobRecordsError(t *testing.T) {
	db := openTest(t)
	id, _ := db.CreateJob("u", "unknown")
	if err := db.FailJob(id, "yt-dlp: unsupported URL"); err != nil {
		t.Fatalf("FailJob: %v", err)
	}
	jobs, _ := db.ListJobs()
	if jobs[0].Status != StatusError || jobs[0].LastError == "" {
		t.Fatalf("row=%+v", jobs[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	db := openTest(t)
	a, _ := db.CreateJob("a", "h")
	b, _ := db.CreateJob("b", "h")
	_ = db.CompleteJob(a, "")
	_ = db.CompleteJob(b, "")
	jobs, err := db.ListJobs()
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID < jobs[1].ID {
		t.Fatalf("order wrong: %v", jobs)
	}
}

func TestOpenRequiresRoot(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty data root")
	}
}
