package export

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskmaster/internal/task"
)

//go:embed tasks.schema.json
var schemaJSON string

// taskFile is the JSON interchange document: {"tasks": [...]}.
type taskFile struct {
	Tasks []record `json:"tasks"`
}

// Import parses a JSON task document, validates it against the bundled
// schema, and inserts every task. Nothing is inserted unless the whole
// document validates. Returns the number of imported tasks.
func (e *Exporter) Import(ctx context.Context, data []byte) (int, error) {
	schema, err := compileSchema()
	if err != nil {
		return 0, fmt.Errorf("compile schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse import file: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return 0, fmt.Errorf("invalid import file: %w", err)
	}

	var f taskFile
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse import file: %w", err)
	}

	// Decode and validate every task before touching the store.
	tasks := make([]task.Task, 0, len(f.Tasks))
	for i, r := range f.Tasks {
		t := task.Task{
			Title:       r.Title,
			Description: r.Description,
			Priority:    r.Priority,
			Done:        r.Done,
		}
		if t.Priority == 0 {
			t.Priority = task.DefaultPriority
		}
		due, err := task.ParseDue(r.DueDate)
		if err != nil {
			return 0, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		t.DueDate = due
		t.Normalize()
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		tasks = append(tasks, t)
	}

	for i, t := range tasks {
		if _, err := e.st.Add(ctx, t); err != nil {
			return i, fmt.Errorf("import tasks[%d]: %w", i, err)
		}
	}
	return len(tasks), nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("tasks.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("tasks.schema.json")
}
