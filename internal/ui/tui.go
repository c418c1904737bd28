// Package ui provides the interactive terminal front end.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskmaster/internal/config"
	"taskmaster/internal/logging"
	"taskmaster/internal/store"
	"taskmaster/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

// RunTUI starts the interactive task browser.
func RunTUI(ctx context.Context, cfg *config.Config, st *store.Store, logger *logging.FileLogger) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newModel(ctx, cfg, st, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
	modeSearch
	modeHelp
)

type tuiModel struct {
	ctx    context.Context
	cfg    *config.Config
	st     *store.Store
	logger *logging.FileLogger

	mode    mode
	tasks   []task.Task
	cursor  int
	filter  task.Filter
	form    taskForm
	confirm task.Task

	status   string // one-shot message shown under the list
	loadErr  error
	fatalErr error
	width    int
}

func newModel(ctx context.Context, cfg *config.Config, st *store.Store, logger *logging.FileLogger) *tuiModel {
	return &tuiModel{
		ctx:    ctx,
		cfg:    cfg,
		st:     st,
		logger: logger,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		if len(m.tasks) > 0 {
			m.cursor = len(m.tasks) - 1
		}
	case "a", "n":
		m.form = newTaskForm(task.Task{Priority: m.cfg.DefaultPriority})
		m.mode = modeForm
	case "e", "enter":
		if t, ok := m.selected(); ok {
			m.form = newTaskForm(t)
			m.mode = modeForm
		}
	case "x", "delete", "backspace":
		if t, ok := m.selected(); ok {
			m.confirm = t
			m.mode = modeConfirm
		}
	case "d":
		if t, ok := m.selected(); ok {
			if err := m.st.SetDone(m.ctx, t.ID, !t.Done); err != nil {
				m.status = "Toggle failed: " + err.Error()
			} else {
				m.logger.Info("toggled task", "id", t.ID, "done", !t.Done)
			}
			m.refresh()
		}
	case "/":
		m.mode = modeSearch
	case "1":
		open := false
		m.filter.Done = &open
		m.refresh()
	case "2":
		done := true
		m.filter.Done = &done
		m.refresh()
	case "0":
		m.filter = task.Filter{}
		m.refresh()
	case "r", "f5":
		m.refresh()
	case "h", "?":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.st.Delete(m.ctx, m.confirm.ID); err != nil {
			m.status = "Delete failed: " + err.Error()
		} else {
			m.logger.Info("deleted task", "id", m.confirm.ID, "title", m.confirm.Title)
			m.status = fmt.Sprintf("Deleted #%d %s", m.confirm.ID, m.confirm.Title)
		}
		m.mode = modeList
		m.refresh()
	default:
		m.mode = modeList
	}
	return m, nil
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.Text = ""
		m.mode = modeList
		m.refresh()
	case tea.KeyEnter:
		m.mode = modeList
	case tea.KeyBackspace:
		if len(m.filter.Text) > 0 {
			runes := []rune(m.filter.Text)
			m.filter.Text = string(runes[:len(runes)-1])
			m.refresh()
		}
	case tea.KeyRunes, tea.KeySpace:
		if msg.Type == tea.KeySpace {
			m.filter.Text += " "
		} else {
			m.filter.Text += string(msg.Runes)
		}
		m.refresh()
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m *tuiModel) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *tuiModel) refresh() {
	tasks, err := m.st.Search(m.ctx, m.filter)
	if err != nil {
		m.loadErr = err
		m.tasks = nil
		return
	}
	m.loadErr = nil
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TaskMaster") + "\n\n")

	switch m.mode {
	case modeHelp:
		writeHelp(&b)
	case modeForm:
		m.form.write(&b)
	case modeConfirm:
		writeList(&b, m)
		b.WriteString(fmt.Sprintf("\nDelete #%d %q? (y/N)\n", m.confirm.ID, m.confirm.Title))
	default:
		writeList(&b, m)
		if m.mode == modeSearch {
			b.WriteString(fmt.Sprintf("\nSearch: %s_\n", m.filter.Text))
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + footerStyle.Render(m.footer()) + "\n")
	return b.String()
}

func (m *tuiModel) footer() string {
	switch m.mode {
	case modeForm:
		return "tab next field | enter save | esc cancel"
	case modeConfirm:
		return "y confirm | any other key cancels"
	case modeSearch:
		return "type to filter | enter keep | esc clear"
	case modeHelp:
		return "any key to return"
	default:
		return "a add | e edit | d done | x delete | / search | ? help | q quit"
	}
}

func writeList(b *strings.Builder, m *tuiModel) {
	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n")
		return
	}

	if filterLabel := describeFilter(m.filter); filterLabel != "" {
		b.WriteString("Filter: " + filterLabel + " (0 to clear)\n\n")
	}

	if len(m.tasks) == 0 {
		b.WriteString("No tasks. Press a to add one.\n")
		return
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %4s  %-40s  %2s  %-10s  %s", "ID", "Title", "P", "Due", "Done")) + "\n")
	for i, t := range m.tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		title := t.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		row := fmt.Sprintf("  %4d  %-40s  %2d  %-10s  [%s]", t.ID, title, t.Priority, t.DueString(), mark)
		switch {
		case i == m.cursor:
			row = selectedStyle.Render(row)
		case t.Done:
			row = doneStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}

	if t, ok := m.selected(); ok && t.Description != "" {
		desc := t.Description
		if len(desc) > 76 {
			desc = desc[:73] + "..."
		}
		b.WriteString("\n  " + doneStyle.Render(desc) + "\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  a, n         Add a task\n")
	b.WriteString("  e, enter     Edit the selected task\n")
	b.WriteString("  d            Toggle done on the selected task\n")
	b.WriteString("  x, del       Delete the selected task (with confirm)\n")
	b.WriteString("  /            Search title and description\n")
	b.WriteString("  1            Show open tasks only\n")
	b.WriteString("  2            Show done tasks only\n")
	b.WriteString("  0            Clear filters\n")
	b.WriteString("  r, F5        Refresh from the database\n")
	b.WriteString("  j/k, arrows  Move the cursor\n\n")
}

func describeFilter(f task.Filter) string {
	var parts []string
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("text %q", f.Text))
	}
	if f.Priority != 0 {
		parts = append(parts, fmt.Sprintf("priority %d", f.Priority))
	}
	if f.Done != nil {
		if *f.Done {
			parts = append(parts, "done")
		} else {
			parts = append(parts, "open")
		}
	}
	return strings.Join(parts, ", ")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
