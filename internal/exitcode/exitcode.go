// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todo/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task number).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a seed source or network error.
	BackendError = 3

	// StoreError indicates the local database could not be read or written.
	StoreError = 4
)

// For maps a service error to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrIndexOutOfRange), errors.Is(err, service.ErrNotFound):
		return UserError
	case service.IsRemote(err):
		return BackendError
	case service.IsStore(err):
		return StoreError
	default:
		return UserError
	}
}
