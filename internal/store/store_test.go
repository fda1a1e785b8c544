package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/service"
	"todo/internal/taskid"
)

// createTestStore opens a store backed by a file in a temp dir.
func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "todo.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// tickingClock makes every call to now one second later than the last.
func tickingClock(s *Store) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}

func titles(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.TitleText()
	}
	return out
}

func TestCreate_FetchRoundTrip(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "A", service.StringPtr("B"))
	require.NoError(t, err)
	assert.True(t, taskid.Valid(created.ID))
	assert.False(t, created.IsCompleted)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "A", got.TitleText())
	require.NotNil(t, got.Description)
	assert.Equal(t, "B", *got.Description)
	assert.False(t, got.IsCompleted)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCreate_KeepsAbsentAndEmptyDescriptionApart(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	absent, err := s.Create(ctx, "no description", nil)
	require.NoError(t, err)
	empty, err := s.Create(ctx, "empty description", service.StringPtr(""))
	require.NoError(t, err)

	got, err := s.Get(ctx, absent.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	got, err = s.Get(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "", *got.Description)
}

func TestFetchAll_NewestFirst(t *testing.T) {
	s, _ := createTestStore(t)
	tickingClock(s)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, title, nil)
		require.NoError(t, err)
	}

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, titles(all))
}

func TestFetchAll_Empty(t *testing.T) {
	s, _ := createTestStore(t)

	all, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUpdate_RepeatedIdenticalCallsLeaveRecordUnchanged(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	task, err := s.Create(ctx, "draft", nil)
	require.NoError(t, err)

	first, err := s.Update(ctx, task, "final", service.StringPtr("notes"), true)
	require.NoError(t, err)
	afterFirst, err := s.Get(ctx, task.ID)
	require.NoError(t, err)

	_, err = s.Update(ctx, first, "final", service.StringPtr("notes"), true)
	require.NoError(t, err)
	afterSecond, err := s.Get(ctx, task.ID)
	require.NoError(t, err)

	assert.Equal(t, afterFirst, afterSecond)
	assert.Equal(t, "final", afterSecond.TitleText())
	assert.Equal(t, "notes", afterSecond.DescriptionText())
	assert.True(t, afterSecond.IsCompleted)
	assert.True(t, task.CreatedAt.Equal(afterSecond.CreatedAt))
}

func TestUpdate_MissingTask(t *testing.T) {
	s, _ := createTestStore(t)

	ghost := service.Task{ID: uuid.New()}
	_, err := s.Update(context.Background(), ghost, "x", nil, false)
	assert.ErrorIs(t, err, service.ErrSave)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	var created []service.Task
	for i := 0; i < 3; i++ {
		task, err := s.Create(ctx, fmt.Sprintf("task %d", i), nil)
		require.NoError(t, err)
		created = append(created, task)
	}

	require.NoError(t, s.Delete(ctx, created[1]))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	for _, task := range all {
		assert.NotEqual(t, created[1].ID, task.ID)
	}

	err = s.Delete(ctx, created[1])
	assert.ErrorIs(t, err, service.ErrSave)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFetchMatching(t *testing.T) {
	s, _ := createTestStore(t)
	tickingClock(s)
	ctx := context.Background()

	for _, title := range []string{"Foobar", "barfoo", "Crème brûlée", "unrelated"} {
		_, err := s.Create(ctx, title, nil)
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"foo", []string{"barfoo", "Foobar"}},
		{"FOO", []string{"barfoo", "Foobar"}},
		{"creme", []string{"Crème brûlée"}},
		{"BRÛLÉE", []string{"Crème brûlée"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.FetchMatching(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFetchMatching_SkipsUntitled(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	untitled := service.Task{ID: uuid.New(), Description: service.StringPtr("foo"), CreatedAt: s.timestamp()}
	_, err := submit(s, func(u *unitOfWork) (struct{}, error) {
		if err := u.Insert(untitled); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, u.Commit()
	}).Await(ctx)
	require.NoError(t, err)

	got, err := s.FetchMatching(ctx, "foo")
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Title)
}

func TestBulkImport(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	seeds := []service.SeedRecord{
		{ID: 1, Body: "Buy milk", Completed: false, OwnerID: 7},
		{ID: 2, Body: "Walk dog", Completed: true, OwnerID: 9},
	}

	imported, err := s.BulkImport(ctx, seeds)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, imported, all)

	assert.Equal(t, taskid.FromInt(1), all[0].ID)
	assert.Equal(t, "Buy milk", all[0].TitleText())
	assert.Equal(t, "Buy milk", all[0].DescriptionText())
	assert.False(t, all[0].IsCompleted)

	assert.Equal(t, taskid.FromInt(2), all[1].ID)
	assert.Equal(t, "Walk dog", all[1].TitleText())
	assert.Equal(t, "Walk dog", all[1].DescriptionText())
	assert.True(t, all[1].IsCompleted)
}

func TestBulkImport_AllOrNothing(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	seeds := []service.SeedRecord{
		{ID: 1, Body: "one"},
		{ID: 2, Body: "two"},
		{ID: 1, Body: "duplicate"},
	}

	_, err := s.BulkImport(ctx, seeds)
	assert.ErrorIs(t, err, service.ErrSave)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUncommittedMutationIsRolledBack(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	task := service.Task{ID: uuid.New(), Title: service.StringPtr("lost"), CreatedAt: s.timestamp()}
	_, err := submit(s, func(u *unitOfWork) (struct{}, error) {
		return struct{}{}, u.Insert(task)
	}).Await(ctx)
	assert.ErrorIs(t, err, ErrUncommitted)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := createTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "durable", service.StringPtr("still here"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.TitleText())
	assert.Equal(t, "still here", got.DescriptionText())
}

func TestClosedStore(t *testing.T) {
	s, _ := createTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.FetchAll(context.Background())
	assert.ErrorIs(t, err, service.ErrFetch)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.Create(context.Background(), "late", nil)
	assert.ErrorIs(t, err, service.ErrSave)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentCreatesAreSerialized(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, fmt.Sprintf("task %d", i), nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(context.Background(), "in memory", nil)
	require.NoError(t, err)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
