// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskmaster/internal/store"
	"taskmaster/internal/task"
)

// testArgs prefixes args with flags pointing the database and log file at
// a temporary directory.
func testArgs(t *testing.T, args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	base := []string{
		"-db", filepath.Join(dir, "tasks.db"),
		"-log-file", filepath.Join(dir, "taskmaster.log"),
	}
	return append(base, args...)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("shows help with --help flag", func(t *testing.T) {
		if err := Run(ctx, []string{"--help"}); err != nil {
			t.Errorf("expected no error with --help, got %v", err)
		}
	})

	t.Run("shows version with --version flag", func(t *testing.T) {
		if err := Run(ctx, []string{"--version"}); err != nil {
			t.Errorf("expected no error with --version, got %v", err)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		if err := Run(ctx, []string{"help"}); err != nil {
			t.Errorf("expected no error with help command, got %v", err)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		err := Run(ctx, []string{"frobnicate"})
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected unknown command error, got %v", err)
		}
	})
}

func TestAddAndLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	base := []string{"-db", dbPath, "-log-file", filepath.Join(dir, "taskmaster.log")}

	run := func(args ...string) error {
		return Run(ctx, append(append([]string{}, base...), args...))
	}

	if err := run("add", "-priority", "4", "-due", "2026-10-01", "Buy", "milk"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := run("add", "Second", "task"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := run("done", "1"); err != nil {
		t.Fatalf("done: %v", err)
	}
	if err := run("edit", "2", "-title", "Renamed task"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := run("rm", "1"); err != nil {
		t.Fatalf("rm: %v", err)
	}

	// Verify through the store directly.
	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != 2 || tasks[0].Title != "Renamed task" {
		t.Errorf("got %+v", tasks[0])
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	if err := Run(ctx, testArgs(t, "add", "   ")); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestRmMissingTask(t *testing.T) {
	ctx := context.Background()
	err := Run(ctx, testArgs(t, "rm", "42"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRmRejectsBadID(t *testing.T) {
	ctx := context.Background()
	for _, bad := range []string{"abc", "0", "-3"} {
		if err := Run(ctx, testArgs(t, "rm", bad)); err == nil {
			t.Errorf("rm %q: expected error", bad)
		}
	}
}

func TestSeedCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	base := []string{"-db", dbPath, "-log-file", filepath.Join(dir, "taskmaster.log")}

	if err := Run(ctx, append(append([]string{}, base...), "seed")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestExportAndImportFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := []string{
		"-db", filepath.Join(dir, "tasks.db"),
		"-log-file", filepath.Join(dir, "taskmaster.log"),
	}
	run := func(args ...string) error {
		return Run(ctx, append(append([]string{}, base...), args...))
	}

	if err := run("add", "Exported task"); err != nil {
		t.Fatalf("add: %v", err)
	}
	outFile := filepath.Join(dir, "tasks.json")
	if err := run("export", "-format", "json", "-o", outFile); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.Contains(data, []byte("Exported task")) {
		t.Errorf("export missing task: %s", data)
	}

	// Import into a second database.
	dir2 := t.TempDir()
	base2 := []string{
		"-db", filepath.Join(dir2, "tasks.db"),
		"-log-file", filepath.Join(dir2, "taskmaster.log"),
	}
	if err := Run(ctx, append(append([]string{}, base2...), "import", outFile)); err != nil {
		t.Fatalf("import: %v", err)
	}
	s, err := store.Open(filepath.Join(dir2, "tasks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count: got %d, want 1", n)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "17"})
	if err != nil {
		t.Fatalf("parseIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 17 {
		t.Errorf("got %v", ids)
	}
	if _, err := parseIDs([]string{"x"}); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestPrintTasksEmpty(t *testing.T) {
	var b bytes.Buffer
	printTasks(&b, nil)
	if !strings.Contains(b.String(), "No tasks") {
		t.Errorf("got %q", b.String())
	}
}

func TestPrintTasksColumns(t *testing.T) {
	var b bytes.Buffer
	printTasks(&b, []task.Task{{ID: 3, Title: "Water plants", Priority: 2, Done: true}})
	out := b.String()
	if !strings.Contains(out, "Water plants") || !strings.Contains(out, "x") {
		t.Errorf("got %q", out)
	}
}
