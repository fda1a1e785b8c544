package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/service"
)

// loadView loads every task, then narrows the view to query when set.
// LoadAll runs first so an empty store is seeded before searching.
func loadView(ctx context.Context, svc service.Service, query string) ([]service.Task, error) {
	tasks, err := svc.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return tasks, nil
	}
	return svc.Search(ctx, query)
}

// resolveTask parses the task number in args, loads the view and returns
// the task's 0-based index. On failure the error is reported and the exit
// code returned.
func resolveTask(ctx context.Context, svc service.Service, query string, args []string, errOut io.Writer) (int, service.Task, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, service.Task{}, exitcode.UserError
	}
	if _, err := loadView(ctx, svc, query); err != nil {
		return 0, service.Task{}, reportError(errOut, err)
	}
	task, err := svc.TaskAt(num - 1)
	if err != nil {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return 0, service.Task{}, exitcode.UserError
	}
	return num - 1, task, exitcode.Success
}

// reportError prints err with a prefix naming its kind and returns the
// matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrIndexOutOfRange):
		fmt.Fprintf(errOut, "error: %v\n", err)
	case service.IsRemote(err):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	case service.IsStore(err):
		fmt.Fprintf(errOut, "error: store error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.For(err)
}
