package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmaster.log")

	l, err := Open(path, "info")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Info("added task", "id", 7, "title", "Buy milk")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "added task") || !strings.Contains(out, "id=7") {
		t.Errorf("log output missing fields: %q", out)
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmaster.log")

	for i := 0; i < 2; i++ {
		l, err := Open(path, "info")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		l.Info("run")
		l.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if got := strings.Count(string(data), "run"); got != 2 {
		t.Errorf("got %d entries, want 2", got)
	}
}

func TestOpenRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmaster.log")
	if _, err := Open(path, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmaster.log")

	l, err := Open(path, "warn")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Debug("quiet")
	l.Info("also quiet")
	l.Warn("loud")
	l.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "quiet") {
		t.Errorf("below-level entries written: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("dropped")
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
