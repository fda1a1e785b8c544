// Package async provides a small future type for work that completes on
// another goroutine.
package async

import (
	"context"
	"sync"
)

// Result is the outcome of a unit of asynchronous work.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is a read-only handle to a Result that becomes available later.
// A Future is resolved exactly once.
type Future[T any] struct {
	done chan struct{}
	res  Result[T]
}

// NewPromise returns an unresolved Future and the function that resolves it.
// Calls to resolve after the first are ignored.
func NewPromise[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	var once sync.Once
	resolve := func(v T, err error) {
		once.Do(func() {
			f.res = Result[T]{Value: v, Err: err}
			close(f.done)
		})
	}
	return f, resolve
}

// Go runs fn on a new goroutine and returns its Future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, resolve := NewPromise[T]()
	go func() {
		resolve(fn())
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done.
// Giving up on ctx does not stop the underlying work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the result is available.
func (f *Future[T]) Result() Result[T] {
	<-f.done
	return f.res
}
