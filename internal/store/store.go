// Package store persists tasks in a local SQLite database file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"taskmaster/internal/task"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Store wraps the task database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite writes are serialized through a single connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	createTasks := `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority INTEGER NOT NULL,
    due_date TEXT,
    done INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`
	_, err := s.db.ExecContext(ctx, createTasks)
	return err
}

// Add validates and inserts a task, returning the new id.
func (s *Store) Add(ctx context.Context, t task.Task) (int64, error) {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, priority, due_date, done, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Priority, dueValue(t.DueDate), boolValue(t.Done),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Update replaces all user-editable fields of the task with the given id.
func (s *Store) Update(ctx context.Context, t task.Task) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title=?, description=?, priority=?, due_date=?, done=?, updated_at=? WHERE id=?`,
		t.Title, t.Description, t.Priority, dueValue(t.DueDate), boolValue(t.Done),
		now.Format(time.RFC3339), t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return checkAffected(res, t.ID)
}

// SetDone marks the task done or not done.
func (s *Store) SetDone(ctx context.Context, id int64, done bool) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET done=?, updated_at=? WHERE id=?`,
		boolValue(done), now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return checkAffected(res, id)
}

// Delete removes the task with the given id. Other rows are never touched.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return checkAffected(res, id)
}

// List returns all tasks in insertion order.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	return s.query(ctx, selectCols+` FROM tasks ORDER BY id`)
}

// Search returns tasks matching the filter in display order: open before
// done, higher priority first, earlier due dates first with undated last.
func (s *Store) Search(ctx context.Context, f task.Filter) ([]task.Task, error) {
	q := selectCols + ` FROM tasks WHERE 1=1`
	var args []any
	if f.Text != "" {
		q += ` AND (title LIKE ? OR description LIKE ?)`
		like := "%" + f.Text + "%"
		args = append(args, like, like)
	}
	if f.Priority != 0 {
		q += ` AND priority = ?`
		args = append(args, f.Priority)
	}
	if f.Done != nil {
		q += ` AND done = ?`
		args = append(args, boolValue(*f.Done))
	}
	q += ` ORDER BY done, priority DESC, due_date IS NULL, due_date, id`
	return s.query(ctx, q, args...)
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// Seed inserts the welcome sample tasks if the table is empty.
// Returns the number of tasks inserted.
func (s *Store) Seed(ctx context.Context) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	in3 := today.AddDate(0, 0, 3)
	in7 := today.AddDate(0, 0, 7)
	samples := []task.Task{
		{Title: "Welcome to TaskMaster", Description: "Edit or delete this sample task.", Priority: 3},
		{Title: "Finish report", Description: "Complete the quarterly report.", Priority: 4, DueDate: &in3},
		{Title: "Pay bills", Description: "Utilities and internet", Priority: 2, DueDate: &in7},
	}
	for _, t := range samples {
		if _, err := s.Add(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

const selectCols = `SELECT id, title, description, priority, due_date, done, created_at, updated_at`

func (s *Store) query(ctx context.Context, q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t         task.Task
		due       sql.NullString
		done      int
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &due, &done, &createdAt, &updatedAt); err != nil {
		return task.Task{}, err
	}
	t.Done = done != 0
	if due.Valid && due.String != "" {
		d, err := time.Parse(task.DateLayout, due.String)
		if err != nil {
			return task.Task{}, fmt.Errorf("parse due_date %q: %w", due.String, err)
		}
		t.DueDate = &d
	}
	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return task.Task{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return task.Task{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return t, nil
}

func checkAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func dueValue(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(task.DateLayout)
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
