package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskmaster/internal/task"
)

// Form field indexes.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDue
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Priority (1-5)", "Due date (YYYY-MM-DD)"}

// taskForm edits a new or existing task, one line per field.
type taskForm struct {
	id     int64 // 0 for a new task
	done   bool  // preserved across edit
	values [fieldCount]string
	focus  int
	errMsg string
}

func newTaskForm(t task.Task) taskForm {
	f := taskForm{id: t.ID, done: t.Done}
	f.values[fieldTitle] = t.Title
	f.values[fieldDescription] = t.Description
	f.values[fieldPriority] = strconv.Itoa(t.Priority)
	f.values[fieldDue] = t.DueString()
	return f
}

// build converts the form values back into a task, reporting the first
// invalid field.
func (f *taskForm) build() (task.Task, error) {
	t := task.Task{
		ID:          f.id,
		Title:       f.values[fieldTitle],
		Description: f.values[fieldDescription],
		Done:        f.done,
	}
	p, err := strconv.Atoi(strings.TrimSpace(f.values[fieldPriority]))
	if err != nil {
		return task.Task{}, &task.ValidationError{
			Field: "priority",
			Err:   fmt.Errorf("must be an integer between %d and %d", task.MinPriority, task.MaxPriority),
		}
	}
	t.Priority = p
	due, err := task.ParseDue(f.values[fieldDue])
	if err != nil {
		return task.Task{}, err
	}
	t.DueDate = due
	t.Normalize()
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeList
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + fieldCount - 1) % fieldCount
	case tea.KeyEnter:
		if f.focus < fieldCount-1 {
			f.focus++
			return m, nil
		}
		m.submitForm()
	case tea.KeyBackspace:
		v := f.values[f.focus]
		if len(v) > 0 {
			runes := []rune(v)
			f.values[f.focus] = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		f.values[f.focus] += " "
	case tea.KeyRunes:
		f.values[f.focus] += string(msg.Runes)
	}
	return m, nil
}

func (m *tuiModel) submitForm() {
	t, err := m.form.build()
	if err != nil {
		m.form.errMsg = err.Error()
		return
	}

	if t.IsZero() {
		id, err := m.st.Add(m.ctx, t)
		if err != nil {
			m.form.errMsg = err.Error()
			return
		}
		m.logger.Info("added task", "id", id, "title", t.Title)
		m.status = fmt.Sprintf("Added #%d %s", id, t.Title)
	} else {
		if err := m.st.Update(m.ctx, t); err != nil {
			m.form.errMsg = err.Error()
			return
		}
		m.logger.Info("updated task", "id", t.ID, "title", t.Title)
		m.status = fmt.Sprintf("Saved #%d %s", t.ID, t.Title)
	}
	m.mode = modeList
	m.refresh()
}

func (f *taskForm) write(b *strings.Builder) {
	if f.id == 0 {
		b.WriteString("New Task\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Edit Task #%d\n\n", f.id))
	}

	for i := 0; i < fieldCount; i++ {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		value := f.values[i]
		if i == f.focus {
			value += "_"
		}
		b.WriteString(fmt.Sprintf("%s%-22s %s\n", marker, fieldLabels[i]+":", value))
	}

	if f.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(f.errMsg) + "\n")
	}
}
