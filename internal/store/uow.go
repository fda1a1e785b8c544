package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todo/internal/service"
)

// unitOfWork is the repository view a queued job sees. Reads and writes
// share one transaction; mutations only become durable through Commit.
type unitOfWork struct {
	tx        *sql.Tx
	dirty     bool
	committed bool
}

const selectTasks = `
	SELECT id, title, description, is_completed, created_at
	FROM tasks`

// newest first; equal timestamps keep insertion order
const orderNewestFirst = ` ORDER BY created_at DESC, seq ASC`

// Get returns the task with the given ID.
func (u *unitOfWork) Get(id uuid.UUID) (service.Task, error) {
	row := u.tx.QueryRow(selectTasks+` WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return t, err
}

// GetAll returns every task accepted by match (all when match is nil),
// newest first.
func (u *unitOfWork) GetAll(match func(service.Task) bool) ([]service.Task, error) {
	rows, err := u.tx.Query(selectTasks + orderNewestFirst)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []service.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if match == nil || match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, rows.Err()
}

// Count returns the number of stored tasks.
func (u *unitOfWork) Count() (int, error) {
	var n int
	err := u.tx.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

// Insert adds a new task. The ID must not exist yet.
func (u *unitOfWork) Insert(t service.Task) error {
	u.dirty = true
	_, err := u.tx.Exec(`
		INSERT INTO tasks (id, title, description, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID.String(), nullString(t.Title), nullString(t.Description), t.IsCompleted, t.CreatedAt.UnixNano())
	return err
}

// Save writes the mutable fields of an existing task.
func (u *unitOfWork) Save(t service.Task) error {
	u.dirty = true
	res, err := u.tx.Exec(`
		UPDATE tasks SET title = ?, description = ?, is_completed = ?
		WHERE id = ?
	`, nullString(t.Title), nullString(t.Description), t.IsCompleted, t.ID.String())
	if err != nil {
		return err
	}
	return requireOneRow(res, t.ID)
}

// Delete removes the task with the given ID.
func (u *unitOfWork) Delete(id uuid.UUID) error {
	u.dirty = true
	res, err := u.tx.Exec(`DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireOneRow(res, id)
}

// Commit makes the pending mutations durable.
func (u *unitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	u.committed = true
	return nil
}

func (u *unitOfWork) rollback() {
	if !u.committed {
		_ = u.tx.Rollback()
	}
}

func requireOneRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (service.Task, error) {
	var (
		id          string
		title       sql.NullString
		description sql.NullString
		completed   bool
		createdAt   int64
	)
	if err := s.Scan(&id, &title, &description, &completed, &createdAt); err != nil {
		return service.Task{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return service.Task{}, fmt.Errorf("invalid task id %q: %w", id, err)
	}

	t := service.Task{
		ID:          parsed,
		IsCompleted: completed,
		CreatedAt:   time.Unix(0, createdAt),
	}
	if title.Valid {
		t.Title = service.StringPtr(title.String)
	}
	if description.Valid {
		t.Description = service.StringPtr(description.String)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
