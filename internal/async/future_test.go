package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_Value(t *testing.T) {
	f := Go(func() (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, Result[int]{Value: 42}, f.Result())
}

func TestGo_Error(t *testing.T) {
	boom := errors.New("boom")
	f := Go(func() (string, error) { return "", boom })

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPromise_ResolveOnce(t *testing.T) {
	f, resolve := NewPromise[int]()
	resolve(1, nil)
	resolve(2, errors.New("ignored"))

	res := f.Result()
	assert.Equal(t, 1, res.Value)
	assert.NoError(t, res.Err)
}

func TestAwait_ContextDoneLeavesWorkRunning(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-f.Done()
	assert.Equal(t, 7, f.Result().Value)
}
