// Package store persists tasks in an embedded SQLite database.
//
// All reads and writes go through a single work queue: one goroutine owns
// the connection and runs each job inside its own transaction, so two
// mutations never interleave. Jobs are handed back to callers as futures.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"todo/internal/async"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var (
	// ErrClosed is returned for work submitted after Close.
	ErrClosed = errors.New("store closed")

	// ErrUncommitted is returned when a job mutates without committing.
	ErrUncommitted = errors.New("changes not committed")
)

// Store is the persisted task store.
type Store struct {
	db *sql.DB

	jobs chan func()
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once
	closeErr  error

	now func() time.Time
}

// Open opens (creating if needed) the database at path and starts the
// work queue.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	// One connection: the queue is the only user, and an in-memory
	// database lives exactly as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := configurePragmas(ctx, db, path); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:   db,
		jobs: make(chan func()),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		now:  time.Now,
	}
	go s.run()
	return s, nil
}

func configurePragmas(ctx context.Context, db *sql.DB, path string) error {
	pragma := []string{"PRAGMA synchronous=FULL;"}
	if path != MemoryPath {
		pragma = append(pragma, "PRAGMA journal_mode=WAL;")
	}
	for _, q := range pragma {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("set pragma %q: %w", q, err)
		}
	}
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			description TEXT,
			is_completed INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close stops the work queue and closes the database. A job that is
// already running finishes first.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.quit:
			return
		}
	}
}

// submit queues fn to run in its own unit of work. Once queued, the job
// runs to completion even if nobody awaits it.
func submit[T any](s *Store, fn func(u *unitOfWork) (T, error)) *async.Future[T] {
	f, resolve := async.NewPromise[T]()
	job := func() {
		resolve(perform(s.db, fn))
	}
	select {
	case s.jobs <- job:
	case <-s.quit:
		var zero T
		resolve(zero, ErrClosed)
	}
	return f
}

func perform[T any](db *sql.DB, fn func(u *unitOfWork) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return zero, fmt.Errorf("begin tx: %w", err)
	}
	u := &unitOfWork{tx: tx}
	defer u.rollback()

	v, err := fn(u)
	if err != nil {
		return zero, err
	}
	if u.dirty && !u.committed {
		return zero, ErrUncommitted
	}
	return v, nil
}

// timestamp returns the current time at the precision the database keeps.
func (s *Store) timestamp() time.Time {
	return time.Unix(0, s.now().UnixNano())
}

func wrap(kind error, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
