// Package reconciler implements service.Service on top of the local task
// store. On first load it imports seed data when the store is empty and
// afterwards only talks to the store.
package reconciler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"todo/internal/service"
)

// Repository is the persistence contract the reconciler needs.
// *store.Store satisfies it.
type Repository interface {
	FetchAll(ctx context.Context) ([]service.Task, error)
	FetchMatching(ctx context.Context, substring string) ([]service.Task, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, title string, description *string) (service.Task, error)
	Update(ctx context.Context, task service.Task, title string, description *string, isCompleted bool) (service.Task, error)
	Delete(ctx context.Context, task service.Task) error
	BulkImport(ctx context.Context, seeds []service.SeedRecord) ([]service.Task, error)
	Close() error
}

// Reconciler owns the cached task view shown to presentation layers.
type Reconciler struct {
	repo   Repository
	source service.SeedSource
	log    *log.Logger

	// status is readable while a bootstrap holds mu.
	status atomic.Int32

	mu    sync.Mutex
	query string
	view  []service.Task
}

var _ service.Service = (*Reconciler)(nil)

// New creates a Reconciler. A nil source disables the seed import.
func New(repo Repository, source service.SeedSource, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Reconciler{
		repo:   repo,
		source: source,
		log:    logger,
		view:   []service.Task{},
	}
}

// Status returns the bootstrap status.
func (r *Reconciler) Status() service.Status {
	return service.Status(r.status.Load())
}

func (r *Reconciler) setStatus(s service.Status) {
	r.status.Store(int32(s))
	r.log.Printf("status: %s", s)
}

// Query returns the active search query, empty when the view is unfiltered.
func (r *Reconciler) Query() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query
}

// LoadAll implements service.Service.
func (r *Reconciler) LoadAll(ctx context.Context) ([]service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		tasks []service.Task
		err   error
	)
	if r.Status() != service.StatusReady {
		tasks, err = r.bootstrap(ctx)
	} else {
		tasks, err = r.repo.FetchAll(ctx)
	}
	if err != nil {
		r.log.Printf("load failed: %v", err)
		return nil, err
	}

	r.query = ""
	r.view = tasks
	return r.snapshot(), nil
}

// bootstrap checks the local store and imports seed data when it is empty.
// Any failure resets the status so the next LoadAll starts over.
func (r *Reconciler) bootstrap(ctx context.Context) ([]service.Task, error) {
	r.setStatus(service.StatusCheckingLocal)

	n, err := r.repo.Count(ctx)
	if err != nil {
		r.setStatus(service.StatusUnknown)
		return nil, err
	}
	if n > 0 || r.source == nil {
		tasks, err := r.repo.FetchAll(ctx)
		if err != nil {
			r.setStatus(service.StatusUnknown)
			return nil, err
		}
		r.setStatus(service.StatusReady)
		return tasks, nil
	}

	r.setStatus(service.StatusImportingRemote)

	seeds, err := r.source.FetchSeedTasks(ctx)
	if err != nil {
		r.setStatus(service.StatusUnknown)
		return nil, err
	}
	tasks, err := r.repo.BulkImport(ctx, seeds)
	if err != nil {
		r.setStatus(service.StatusUnknown)
		return nil, err
	}
	r.log.Printf("imported %d seed tasks", len(tasks))
	r.setStatus(service.StatusReady)
	return tasks, nil
}

// Search implements service.Service.
func (r *Reconciler) Search(ctx context.Context, query string) ([]service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query = strings.TrimSpace(query)
	tasks, err := r.fetch(ctx, query)
	if err != nil {
		r.log.Printf("search %q failed: %v", query, err)
		return nil, err
	}

	r.query = query
	r.view = tasks
	return r.snapshot(), nil
}

// Create implements service.Service.
func (r *Reconciler) Create(ctx context.Context, title string, description *string) (service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, err := r.repo.Create(ctx, title, description)
	if err != nil {
		r.log.Printf("create failed: %v", err)
		return service.Task{}, err
	}
	if err := r.refresh(ctx); err != nil {
		return task, err
	}
	return task, nil
}

// Update implements service.Service.
func (r *Reconciler) Update(ctx context.Context, index int, title string, description *string, isCompleted bool) (service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.at(index)
	if err != nil {
		return service.Task{}, err
	}

	task, err := r.repo.Update(ctx, current, title, description, isCompleted)
	if err != nil {
		r.log.Printf("update %s failed: %v", current.ID, err)
		return service.Task{}, err
	}
	if err := r.refresh(ctx); err != nil {
		return task, err
	}
	return task, nil
}

// Delete implements service.Service.
func (r *Reconciler) Delete(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.at(index)
	if err != nil {
		return err
	}

	if err := r.repo.Delete(ctx, current); err != nil {
		r.log.Printf("delete %s failed: %v", current.ID, err)
		return err
	}
	r.view = append(r.view[:index:index], r.view[index+1:]...)
	return nil
}

// Toggle implements service.Service.
func (r *Reconciler) Toggle(ctx context.Context, index int) (service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.at(index)
	if err != nil {
		return service.Task{}, err
	}

	task, err := r.repo.Update(ctx, current, current.TitleText(), current.Description, !current.IsCompleted)
	if err != nil {
		r.log.Printf("toggle %s failed: %v", current.ID, err)
		return service.Task{}, err
	}
	r.view[index] = task
	return task, nil
}

// Tasks implements service.Service.
func (r *Reconciler) Tasks() []service.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Count implements service.Service.
func (r *Reconciler) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.view)
}

// TaskAt implements service.Service.
func (r *Reconciler) TaskAt(index int) (service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at(index)
}

// IndexOf implements service.Service.
func (r *Reconciler) IndexOf(id uuid.UUID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.view {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Close implements service.Service.
func (r *Reconciler) Close() error {
	return r.repo.Close()
}

// refresh reloads the view honoring the active query. Callers hold mu.
func (r *Reconciler) refresh(ctx context.Context) error {
	tasks, err := r.fetch(ctx, r.query)
	if err != nil {
		r.log.Printf("refresh failed: %v", err)
		return err
	}
	r.view = tasks
	return nil
}

func (r *Reconciler) fetch(ctx context.Context, query string) ([]service.Task, error) {
	if query == "" {
		return r.repo.FetchAll(ctx)
	}
	return r.repo.FetchMatching(ctx, query)
}

func (r *Reconciler) at(index int) (service.Task, error) {
	if index < 0 || index >= len(r.view) {
		return service.Task{}, fmt.Errorf("%w: %d", service.ErrIndexOutOfRange, index+1)
	}
	return r.view[index], nil
}

func (r *Reconciler) snapshot() []service.Task {
	out := make([]service.Task, len(r.view))
	copy(out, r.view)
	return out
}
