// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo/internal/service"
	"todo/internal/taskid"
)

// BaseTime is the CreatedAt of the first task added to a FakeService.
// Each later task is one minute newer.
var BaseTime = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

// FakeService is an in-memory implementation of service.Service for testing.
// Task IDs are taskid.FromInt(1), FromInt(2), ... in creation order.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task // newest first
	view   []service.Task
	query  string
	nextID int64
	closed bool

	// Error injection for testing
	LoadAllErr error
	SearchErr  error
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	ToggleErr  error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// AddTask stores a task without touching the view and returns it.
func (f *FakeService) AddTask(title string, description *string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(service.StringPtr(title), description, completed)
}

// AddUntitledTask stores a task whose title is absent.
func (f *FakeService) AddUntitledTask() service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(nil, nil, false)
}

func (f *FakeService) insert(title, description *string, completed bool) service.Task {
	f.nextID++
	t := service.Task{
		ID:          taskid.FromInt(f.nextID),
		Title:       title,
		Description: description,
		IsCompleted: completed,
		CreatedAt:   BaseTime.Add(time.Duration(f.nextID-1) * time.Minute),
	}
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t
}

// Stored returns every stored task, newest first, regardless of the view.
func (f *FakeService) Stored() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Closed reports whether Close was called.
func (f *FakeService) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// LoadAll implements service.Service.
func (f *FakeService) LoadAll(ctx context.Context) ([]service.Task, error) {
	if f.LoadAllErr != nil {
		return nil, f.LoadAllErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = ""
	f.view = f.filter("")
	return f.snapshot(), nil
}

// Search implements service.Service.
func (f *FakeService) Search(ctx context.Context, query string) ([]service.Task, error) {
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = strings.TrimSpace(query)
	f.view = f.filter(f.query)
	return f.snapshot(), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, title string, description *string) (service.Task, error) {
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.insert(service.StringPtr(title), copyString(description), false)
	f.view = f.filter(f.query)
	return t, nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, index int, title string, description *string, isCompleted bool) (service.Task, error) {
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.at(index)
	if err != nil {
		return service.Task{}, err
	}
	updated := current
	updated.Title = service.StringPtr(title)
	updated.Description = copyString(description)
	updated.IsCompleted = isCompleted
	if err := f.replace(updated); err != nil {
		return service.Task{}, err
	}
	f.view = f.filter(f.query)
	return updated, nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, index int) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.at(index)
	if err != nil {
		return err
	}
	for i, t := range f.tasks {
		if t.ID == current.ID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			f.view = append(f.view[:index:index], f.view[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %w", service.ErrSave, service.ErrNotFound)
}

// Toggle implements service.Service.
func (f *FakeService) Toggle(ctx context.Context, index int) (service.Task, error) {
	if f.ToggleErr != nil {
		return service.Task{}, f.ToggleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.at(index)
	if err != nil {
		return service.Task{}, err
	}
	current.IsCompleted = !current.IsCompleted
	if err := f.replace(current); err != nil {
		return service.Task{}, err
	}
	f.view[index] = current
	return current, nil
}

// Tasks implements service.Service.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot()
}

// Count implements service.Service.
func (f *FakeService) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.view)
}

// TaskAt implements service.Service.
func (f *FakeService) TaskAt(index int) (service.Task, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at(index)
}

// IndexOf implements service.Service.
func (f *FakeService) IndexOf(id uuid.UUID) (int, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i, t := range f.view {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Close implements service.Service.
func (f *FakeService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FakeService) at(index int) (service.Task, error) {
	if index < 0 || index >= len(f.view) {
		return service.Task{}, fmt.Errorf("%w: %d", service.ErrIndexOutOfRange, index+1)
	}
	return f.view[index], nil
}

func (f *FakeService) replace(t service.Task) error {
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return nil
		}
	}
	return fmt.Errorf("%w: %w", service.ErrSave, service.ErrNotFound)
}

func (f *FakeService) filter(query string) []service.Task {
	needle := strings.ToLower(query)
	out := []service.Task{}
	for _, t := range f.tasks {
		if needle == "" || (t.Title != nil && strings.Contains(strings.ToLower(*t.Title), needle)) {
			out = append(out, t)
		}
	}
	return out
}

func (f *FakeService) snapshot() []service.Task {
	out := make([]service.Task, len(f.view))
	copy(out, f.view)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// FakeSource is a service.SeedSource returning fixed records.
type FakeSource struct {
	mu    sync.Mutex
	Seeds []service.SeedRecord
	Err   error
	calls int
}

// FetchSeedTasks implements service.SeedSource.
func (f *FakeSource) FetchSeedTasks(ctx context.Context) ([]service.SeedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]service.SeedRecord, len(f.Seeds))
	copy(out, f.Seeds)
	return out, nil
}

// Calls returns how many times FetchSeedTasks ran.
func (f *FakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// SetErr changes the injected error.
func (f *FakeSource) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}
