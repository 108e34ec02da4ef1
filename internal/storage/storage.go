package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chime/internal/task"
)

// MemoryPath keeps the whole collection inside the process. It is the
// default: tasks are gone once the program exits.
const MemoryPath = ":memory:"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !isMemory(dbPath) && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	due_date TEXT NOT NULL,
	due_time TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	notified INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

const selectTasks = `SELECT id, name, due_date, due_time, completed, notified, created_at FROM tasks`

// Add validates the draft and appends it. Nothing is written when the draft
// is rejected.
func (s *Store) Add(d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}
	created := s.now().UTC().Round(0)
	res, err := s.db.Exec(`INSERT INTO tasks (name, due_date, due_time, completed, notified, created_at) VALUES (?, ?, ?, 0, 0, ?);`,
		d.Name, d.Date, d.Time, created.Format(time.RFC3339Nano))
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task.Task{
		ID:        id,
		Name:      d.Name,
		Date:      d.Date,
		Time:      d.Time,
		CreatedAt: created,
	}, nil
}

func (s *Store) Get(id int64) (task.Task, error) {
	tasks, err := s.query(selectTasks+` WHERE id = ?;`, id)
	if err != nil {
		return task.Task{}, err
	}
	if len(tasks) == 0 {
		return task.Task{}, fmt.Errorf("%w: %d", task.ErrNotFound, id)
	}
	return tasks[0], nil
}

// FetchTasks returns the collection in insertion order.
func (s *Store) FetchTasks() ([]task.Task, error) {
	return s.query(selectTasks + ` ORDER BY id;`)
}

// Sorted returns the collection in display order.
func (s *Store) Sorted() ([]task.Task, error) {
	tasks, err := s.FetchTasks()
	if err != nil {
		return nil, err
	}
	return task.Sorted(tasks), nil
}

// Pending returns the tasks still eligible for a reminder.
func (s *Store) Pending() ([]task.Task, error) {
	return s.query(selectTasks + ` WHERE completed = 0 AND notified = 0 ORDER BY id;`)
}

// ToggleComplete flips the completed flag and leaves notified alone.
func (s *Store) ToggleComplete(id int64) (task.Task, error) {
	res, err := s.db.Exec(`UPDATE tasks SET completed = 1 - completed WHERE id = ?;`, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	if n == 0 {
		return task.Task{}, fmt.Errorf("%w: %d", task.ErrNotFound, id)
	}
	return s.Get(id)
}

// MarkNotified records that a reminder fired. It reports false when the task
// is gone, completed, or already notified.
func (s *Store) MarkNotified(id int64) (bool, error) {
	res, err := s.db.Exec(`UPDATE tasks SET notified = 1 WHERE id = ? AND completed = 0 AND notified = 0;`, id)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return n == 1, nil
}

// DeleteTask removes the task. Deleting an absent id is not an error.
func (s *Store) DeleteTask(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *Store) query(q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var completed, notified int
		var createdStr string
		if err := rows.Scan(&t.ID, &t.Name, &t.Date, &t.Time, &completed, &notified, &createdStr); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Completed = completed == 1
		t.Notified = notified == 1
		if created, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
			t.CreatedAt = created
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func isMemory(path string) bool {
	return path == MemoryPath
}

func sqliteDSN(path string) string {
	if isMemory(path) || strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
