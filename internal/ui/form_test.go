package ui

import (
	"strings"
	"testing"

	"taskmaster/internal/task"
)

func TestFormBuild(t *testing.T) {
	f := taskForm{}
	f.values[fieldTitle] = "  Plan trip  "
	f.values[fieldDescription] = "book hotel"
	f.values[fieldPriority] = "4"
	f.values[fieldDue] = "2026-05-20"

	got, err := f.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Title != "Plan trip" || got.Priority != 4 || got.DueString() != "2026-05-20" {
		t.Errorf("got %+v", got)
	}
}

func TestFormBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*taskForm)
	}{
		{"blank title", func(f *taskForm) { f.values[fieldTitle] = "  " }},
		{"non-numeric priority", func(f *taskForm) { f.values[fieldPriority] = "high" }},
		{"priority out of range", func(f *taskForm) { f.values[fieldPriority] = "7" }},
		{"bad due date", func(f *taskForm) { f.values[fieldDue] = "next week" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := taskForm{}
			f.values[fieldTitle] = "ok"
			f.values[fieldPriority] = "3"
			tt.mutate(&f)
			if _, err := f.build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFormPreservesIdentity(t *testing.T) {
	f := newTaskForm(task.Task{ID: 9, Title: "Keep me", Priority: 2, Done: true})
	got, err := f.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.ID != 9 || !got.Done {
		t.Errorf("got %+v", got)
	}
}

func TestDescribeFilter(t *testing.T) {
	if describeFilter(task.Filter{}) != "" {
		t.Error("empty filter should have no description")
	}
	done := true
	got := describeFilter(task.Filter{Text: "milk", Priority: 2, Done: &done})
	for _, want := range []string{`text "milk"`, "priority 2", "done"} {
		if !strings.Contains(got, want) {
			t.Errorf("describeFilter: %q missing %q", got, want)
		}
	}
}
