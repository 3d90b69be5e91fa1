package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireWritesLockFile(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Release()

	lockPath := filepath.Join(dir, LockFileName)
	content, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("Failed to read lock file: %v", err)
	}
	if !strings.Contains(string(content), fmt.Sprintf("pid=%d", os.Getpid())) {
		t.Errorf("Lock file missing our PID: %q", string(content))
	}
}

func TestReleaseRemovesLockFile(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}

	lockPath := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("Lock file still exists after release: %s", lockPath)
	}

	// Release is idempotent.
	if err := lock.Release(); err != nil {
		t.Errorf("Second release failed: %v", err)
	}

	// The directory can be locked again.
	lock2, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Failed to re-acquire lock: %v", err)
	}
	lock2.Release()
}

func TestAcquireCreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Failed to acquire lock in missing dir: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("State directory not created: %v", err)
	}
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"pid=1234\nstarted=2026-01-01T00:00:00Z\n", 1234},
		{"started=2026-01-01T00:00:00Z\npid=42\n", 42},
		{"garbage", 0},
		{"pid=notanumber\n", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parsePID(tt.content); got != tt.want {
			t.Errorf("parsePID(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestDescribeHolderReportsRunningProcess(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, LockFileName)
	content := fmt.Sprintf("pid=%d\n", os.Getpid())
	if err := os.WriteFile(lockPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write lock file: %v", err)
	}

	holder := describeHolder(lockPath)
	if !strings.Contains(holder, "running") {
		t.Errorf("Expected running holder description, got %q", holder)
	}
}
