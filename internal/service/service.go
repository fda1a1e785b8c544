package service

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the task operations available to presentation layers.
// Commands and HTTP handlers never touch the store or the seed source
// directly.
//
// Index arguments are 0-based positions in the current view, which is the
// result of the last LoadAll or Search.
type Service interface {
	// LoadAll returns all tasks, importing seed data first if the local
	// store is empty on the first call.
	LoadAll(ctx context.Context) ([]Task, error)

	// Search replaces the view with tasks whose title contains query
	// (case-insensitive). A blank query returns all tasks.
	Search(ctx context.Context, query string) ([]Task, error)

	// Create persists a new task and refreshes the view.
	Create(ctx context.Context, title string, description *string) (Task, error)

	// Update rewrites the task at index and refreshes the view.
	Update(ctx context.Context, index int, title string, description *string, isCompleted bool) (Task, error)

	// Delete removes the task at index from the store and the view.
	Delete(ctx context.Context, index int) error

	// Toggle flips the completion flag of the task at index.
	Toggle(ctx context.Context, index int) (Task, error)

	// Tasks returns a copy of the current view.
	Tasks() []Task

	// Count returns the number of tasks in the current view.
	Count() int

	// TaskAt returns the task at index in the current view.
	TaskAt(index int) (Task, error)

	// IndexOf returns the view index of the task with the given ID.
	IndexOf(id uuid.UUID) (int, bool)

	// Close releases the underlying store.
	Close() error
}

// SeedSource supplies the records used for the one-time initial import.
type SeedSource interface {
	FetchSeedTasks(ctx context.Context) ([]SeedRecord, error)
}
