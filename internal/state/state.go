package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite"
)

// DB is the server's job registry: one row per submitted URL, updated as
// the download runs and settles.
type DB struct {
	SQL  *sql.DB
	Path string
}

func Open(dataRoot string) (*DB, error) {
	if dataRoot == "" {
		return nil, errors.New("data root required")
	}
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dataRoot, "jobs.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=journal_mode(WAL)&_fk=1", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		return nil, err
	}
	return &DB{SQL: sqldb, Path: path}, nil
}

func (db *DB) Close() error { return db.SQL.Close() }

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			host TEXT NOT NULL,
			status TEXT NOT NULL,
			video_path TEXT,
			title TEXT,
			uploader TEXT,
			duration_sec INTEGER,
			size_bytes INTEGER,
			last_error TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_updated ON jobs(updated_at DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Job statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

type JobRow struct {
	ID          int64
	URL         string
	Host        string
	Status      string
	VideoPath   string
	Title       string
	Uploader    string
	DurationSec int64
	SizeBytes   int64
	LastError   string
	CreatedAt   int64
	UpdatedAt   int64
}

// CreateJob inserts a running job and returns its id.
func (db *DB) CreateJob(url, host string) (int64, error) {
	now := time.Now().Unix()
	res, err := db.SQL.Exec(`INSERT INTO jobs(url, host, status, created_at, updated_at) VALUES(?,?,?,?,?)`,
		url, host, StatusRunning, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteJob marks a job successful. videoPath may be empty when the
// downloader could not identify a merged output file.
func (db *DB) CompleteJob(id int64, videoPath string) error {
	_, err := db.SQL.Exec(`UPDATE jobs SET status=?, video_path=?, last_error='', updated_at=? WHERE id=?`,
		StatusSuccess, videoPath, time.Now().Unix(), id)
	return err
}

// FailJob marks a job failed with the tool's error output.
func (db *DB) FailJob(id int64, lastError string) error {
	_, err := db.SQL.Exec(`UPDATE jobs SET status=?, last_error=?, updated_at=? WHERE id=?`,
		StatusError, lastError, time.Now().Unix(), id)
	return err
}

// SetMediaInfo records metadata lifted from the tool's info JSON.
func (db *DB) SetMediaInfo(id int64, title, uploader string, durationSec, sizeBytes int64) error {
	_, err := db.SQL.Exec(`UPDATE jobs SET title=?, uploader=?, duration_sec=?, size_bytes=?, updated_at=? WHERE id=?`,
		title, uploader, durationSec, sizeBytes, time.Now().Unix(), id)
	return err
}

// ListJobs returns a snapshot of the registry, newest first.
func (db *DB) ListJobs() ([]JobRow, error) {
	rows, err := db.SQL.Query(`SELECT id, url, host, status,
		COALESCE(video_path, ''),
		COALESCE(title, ''),
		COALESCE(uploader, ''),
		COALESCE(duration_sec, 0),
		COALESCE(size_bytes, 0),
		COALESCE(last_error, ''),
		created_at, updated_at
	FROM jobs
	ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JobRow
	for rows.Next() {
		var r JobRow
		if err := rows.Scan(&r.ID, &r.URL, &r.Host, &r.Status, &r.VideoPath, &r.Title, &r.Uploader,
			&r.DurationSec, &r.SizeBytes, &r.LastError, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
