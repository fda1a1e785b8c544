package service

import "errors"

// Error kinds. Layers wrap these with fmt.Errorf("%w: ...") so callers can
// classify failures with errors.Is.
var (
	// ErrNetwork indicates the remote seed source could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrNoData indicates the remote source returned an empty body.
	ErrNoData = errors.New("no data")

	// ErrDecode indicates the remote response did not have the expected shape.
	ErrDecode = errors.New("invalid response")

	// ErrFetch indicates a local store read failed.
	ErrFetch = errors.New("fetch failed")

	// ErrSave indicates a local store write or commit failed.
	ErrSave = errors.New("save failed")

	// ErrNotFound indicates the referenced task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrIndexOutOfRange indicates a view index outside the current view.
	ErrIndexOutOfRange = errors.New("task number out of range")
)

// IsRemote reports whether err came from the seed source.
func IsRemote(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrNoData) || errors.Is(err, ErrDecode)
}

// IsStore reports whether err came from the local store.
func IsStore(err error) bool {
	return errors.Is(err, ErrFetch) || errors.Is(err, ErrSave)
}
