package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"todo/internal/service"
	"todo/internal/taskid"
)

// FetchAll returns every task, newest first.
func (s *Store) FetchAll(ctx context.Context) ([]service.Task, error) {
	tasks, err := submit(s, func(u *unitOfWork) ([]service.Task, error) {
		return u.GetAll(nil)
	}).Await(ctx)
	if err != nil {
		return nil, wrap(service.ErrFetch, err)
	}
	return tasks, nil
}

// FetchMatching returns tasks whose title contains substring, ignoring case
// and diacritics, newest first. Tasks without a title never match.
func (s *Store) FetchMatching(ctx context.Context, substring string) ([]service.Task, error) {
	needle := fold(substring)
	tasks, err := submit(s, func(u *unitOfWork) ([]service.Task, error) {
		return u.GetAll(func(t service.Task) bool {
			return t.Title != nil && strings.Contains(fold(*t.Title), needle)
		})
	}).Await(ctx)
	if err != nil {
		return nil, wrap(service.ErrFetch, err)
	}
	return tasks, nil
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := submit(s, func(u *unitOfWork) (int, error) {
		return u.Count()
	}).Await(ctx)
	if err != nil {
		return 0, wrap(service.ErrFetch, err)
	}
	return n, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (service.Task, error) {
	t, err := submit(s, func(u *unitOfWork) (service.Task, error) {
		return u.Get(id)
	}).Await(ctx)
	if err != nil {
		return service.Task{}, wrap(service.ErrFetch, err)
	}
	return t, nil
}

// Create persists a new, not completed task with a random ID.
func (s *Store) Create(ctx context.Context, title string, description *string) (service.Task, error) {
	t := service.Task{
		ID:          uuid.New(),
		Title:       service.StringPtr(title),
		Description: copyString(description),
		CreatedAt:   s.timestamp(),
	}
	created, err := submit(s, func(u *unitOfWork) (service.Task, error) {
		if err := u.Insert(t); err != nil {
			return service.Task{}, err
		}
		return t, u.Commit()
	}).Await(ctx)
	if err != nil {
		return service.Task{}, wrap(service.ErrSave, err)
	}
	return created, nil
}

// Update rewrites the title, description and completion flag of task and
// returns the stored result. ID and CreatedAt never change.
func (s *Store) Update(ctx context.Context, task service.Task, title string, description *string, isCompleted bool) (service.Task, error) {
	updated := task
	updated.Title = service.StringPtr(title)
	updated.Description = copyString(description)
	updated.IsCompleted = isCompleted

	saved, err := submit(s, func(u *unitOfWork) (service.Task, error) {
		if err := u.Save(updated); err != nil {
			return service.Task{}, err
		}
		return updated, u.Commit()
	}).Await(ctx)
	if err != nil {
		return service.Task{}, wrap(service.ErrSave, err)
	}
	return saved, nil
}

// Delete removes task.
func (s *Store) Delete(ctx context.Context, task service.Task) error {
	_, err := submit(s, func(u *unitOfWork) (struct{}, error) {
		if err := u.Delete(task.ID); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, u.Commit()
	}).Await(ctx)
	if err != nil {
		return wrap(service.ErrSave, err)
	}
	return nil
}

// BulkImport persists one task per seed record in a single transaction.
// Title and description both take the seed body. Either every record is
// stored or none is.
func (s *Store) BulkImport(ctx context.Context, seeds []service.SeedRecord) ([]service.Task, error) {
	now := s.timestamp()
	batch := make([]service.Task, 0, len(seeds))
	ids := make(map[uuid.UUID]bool, len(seeds))
	for _, seed := range seeds {
		t := service.Task{
			ID:          taskid.FromInt(seed.ID),
			Title:       service.StringPtr(seed.Body),
			Description: service.StringPtr(seed.Body),
			IsCompleted: seed.Completed,
			CreatedAt:   now,
		}
		batch = append(batch, t)
		ids[t.ID] = true
	}

	imported, err := submit(s, func(u *unitOfWork) ([]service.Task, error) {
		for _, t := range batch {
			if err := u.Insert(t); err != nil {
				return nil, err
			}
		}
		stored, err := u.GetAll(func(t service.Task) bool { return ids[t.ID] })
		if err != nil {
			return nil, err
		}
		return stored, u.Commit()
	}).Await(ctx)
	if err != nil {
		return nil, wrap(service.ErrSave, err)
	}
	return imported, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return service.StringPtr(*s)
}
