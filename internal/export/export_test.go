package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"

	"taskmaster/internal/store"
	"taskmaster/internal/task"
)

func setup(t *testing.T) (*Exporter, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func seedTasks(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	due, _ := task.ParseDue("2026-02-01")
	seed := []task.Task{
		{Title: "Write slides", Description: "for Monday", Priority: 4, DueDate: due},
		{Title: "Water plants", Priority: 2, Done: true},
	}
	for _, tk := range seed {
		if _, err := s.Add(ctx, tk); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	e, s := setup(t)
	seedTasks(t, s)

	data, err := e.Export(context.Background(), FormatCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	header := []string{"id", "title", "description", "priority", "due_date", "done"}
	for i, h := range header {
		if rows[0][i] != h {
			t.Errorf("header[%d]: got %q, want %q", i, rows[0][i], h)
		}
	}
	// Display order: open task first.
	if rows[1][1] != "Write slides" || rows[1][4] != "2026-02-01" {
		t.Errorf("row 1: got %v", rows[1])
	}
	if rows[2][1] != "Water plants" || rows[2][5] != "1" {
		t.Errorf("row 2: got %v", rows[2])
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	e, s := setup(t)
	seedTasks(t, s)
	ctx := context.Background()

	data, err := e.Export(ctx, FormatJSON)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var f taskFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("parse json export: %v", err)
	}
	if len(f.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(f.Tasks))
	}

	// Import the export into a fresh store.
	s2, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s2.Close()
	e2 := New(s2)
	n, err := e2.Import(ctx, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("Import: got %d, want 2", n)
	}
	count, err := s2.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count: got %d, want 2", count)
	}
}

func TestExportPDF(t *testing.T) {
	e, s := setup(t)
	seedTasks(t, s)

	data, err := e.Export(context.Background(), FormatPDF)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("expected PDF magic, got %q", data[:min(8, len(data))])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	e, _ := setup(t)
	if _, err := e.Export(context.Background(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{"},
		{"missing tasks key", `{"items": []}`},
		{"missing title", `{"tasks": [{"priority": 3}]}`},
		{"blank title", `{"tasks": [{"title": "   "}]}`},
		{"priority out of range", `{"tasks": [{"title": "x", "priority": 9}]}`},
		{"bad due date", `{"tasks": [{"title": "x", "due_date": "soon"}]}`},
		{"unknown field", `{"tasks": [{"title": "x", "color": "red"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Import(ctx, []byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}

	// Rejected documents must not leave partial rows behind.
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count: got %d, want 0", n)
	}
}

func TestImportAppliesDefaults(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	doc := `{"tasks": [{"title": "No priority given"}]}`
	if _, err := e.Import(ctx, []byte(doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Priority != task.DefaultPriority {
		t.Errorf("got %+v", tasks)
	}
}
