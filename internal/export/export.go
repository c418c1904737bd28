// Package export serializes tasks to interchange formats and imports
// them back.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskmaster/internal/store"
	"taskmaster/internal/task"
)

// Formats supported by Export.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// record is the interchange representation of a task. Due dates travel
// as YYYY-MM-DD strings.
type record struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	Done        bool   `json:"done,omitempty"`
}

// Exporter reads tasks from the store and renders them.
type Exporter struct {
	st *store.Store
}

// New returns an Exporter over st.
func New(st *store.Store) *Exporter { return &Exporter{st: st} }

// Export renders all tasks in display order in the given format.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	tasks, err := e.st.Search(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case FormatCSV:
		return renderCSV(tasks)
	case FormatJSON:
		return renderJSON(tasks)
	case FormatPDF:
		return renderPDF(tasks)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func toRecord(t task.Task) record {
	return record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueString(),
		Done:        t.Done,
	}
}

func renderCSV(tasks []task.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"id", "title", "description", "priority", "due_date", "done"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		done := "0"
		if t.Done {
			done = "1"
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			strconv.Itoa(t.Priority),
			t.DueString(),
			done,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func renderJSON(tasks []task.Task) ([]byte, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}
	data, err := json.MarshalIndent(taskFile{Tasks: records}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "TaskMaster Report")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] #%d (P%d) %s", mark, t.ID, t.Priority, t.Title)
		if due := t.DueString(); due != "" {
			line += " due " + due
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
		if t.Description != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, "    "+t.Description, "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
