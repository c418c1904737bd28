// Package task defines the task model, validation, and ordering rules.
package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Priority bounds. 1 is the lowest priority, 5 the highest.
const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// Task represents a single stored task.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"-"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
}

// IsZero returns true if the task has not been stored yet.
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// DueString returns the due date in wire format, or "" when unset.
func (t *Task) DueString() string {
	return FormatDue(t.DueDate)
}

// ValidationError reports an invalid task field.
type ValidationError struct {
	Field string // field name, e.g. "title"
	Err   error  // underlying error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Normalize trims whitespace from the text fields.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
}

// Validate checks the task fields. It does not mutate the task;
// callers normalize first.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{
			Field: "title",
			Err:   fmt.Errorf("must not be empty"),
		}
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return &ValidationError{
			Field: "priority",
			Err:   fmt.Errorf("must be between %d and %d, got %d", MinPriority, MaxPriority, t.Priority),
		}
	}
	return nil
}

// ParseDue parses a due date in wire format. An empty string means no due
// date and yields nil.
func ParseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, &ValidationError{
			Field: "due_date",
			Err:   fmt.Errorf("must be in YYYY-MM-DD format, got %q", s),
		}
	}
	return &d, nil
}

// FormatDue renders a due date in wire format, or "" for nil.
func FormatDue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// Filter describes a search query over stored tasks.
// Zero values match everything.
type Filter struct {
	Text     string // substring match on title or description
	Priority int    // 0 matches any priority
	Done     *bool  // nil matches both open and done tasks
}

// IsEmpty returns true if the filter matches all tasks.
func (f Filter) IsEmpty() bool {
	return f.Text == "" && f.Priority == 0 && f.Done == nil
}

// SortForDisplay orders tasks the way the list view shows them:
// open tasks before done ones, higher priority first, earlier due date
// first with undated tasks last, then by id.
func SortForDisplay(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Done != b.Done {
			return !a.Done
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		if a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	})
}
