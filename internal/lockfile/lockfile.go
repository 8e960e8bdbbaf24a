package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// LockFile represents an exclusive lock on a file. dowd takes one per data
// root so two instances never race over the same registry.
type LockFile struct {
	path string
	file *os.File
}

// Acquire creates and locks a lockfile at the given path. It fails when
// another live process already holds the lock; stale locks from dead
// processes are removed.
func Acquire(path string) (*LockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, handleExistingLock(path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write PID to lock file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to sync lock file: %w", err)
	}

	return &LockFile{path: path, file: f}, nil
}

func handleExistingLock(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lock file exists but cannot be read: %s\nRemove it manually if no other instance is running: rm %s", path, path)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("lock file contains invalid PID: %s\nRemove it manually if corrupted: rm %s", path, path)
	}

	if processExists(pid) {
		return fmt.Errorf("dowd is already running (PID %d)\nStop it or remove the lock file if stale: %s", pid, path)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("stale lock file found (PID %d not running) but cannot be removed: %w\nRemove manually: rm %s", pid, err, path)
	}

	return fmt.Errorf("stale lock detected and removed, please retry")
}

func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix FindProcess always succeeds; probe with signal 0.
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.ESRCH {
		return false
	}
	// Exists but not signalable by us.
	return true
}

// Release releases the lock and removes the lock file.
func (l *LockFile) Release() error {
	if l.file != nil {
		l.file.Close()
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *LockFile) Path() string { return l.path }
