package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
	Register(&SearchCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list --search <query>`.
type ListCmd struct {
	search string
}

// SetSearch sets the search query (for testing).
func (c *ListCmd) SetSearch(query string) {
	c.search = query
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks, newest first" }
func (c *ListCmd) Usage() string      { return "todo list [--search <query>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	return runList(ctx, cfg, svc, c.search, out, errOut)
}

// SearchCmd implements the search command.
type SearchCmd struct{}

func (c *SearchCmd) Name() string       { return "search" }
func (c *SearchCmd) Aliases() []string  { return []string{"find"} }
func (c *SearchCmd) Synopsis() string   { return "List tasks whose title contains the query" }
func (c *SearchCmd) Usage() string      { return "todo search <query...>" }
func (c *SearchCmd) NeedsService() bool { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(errOut, "error: search query required")
		return exitcode.UserError
	}
	return runList(ctx, cfg, svc, query, out, errOut)
}

// runList is the shared implementation for list and search commands.
func runList(ctx context.Context, cfg *config.Config, svc service.Service, query string, out, errOut io.Writer) int {
	tasks, err := loadView(ctx, svc, query)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTasks(out, tasks)
	return exitcode.Success
}
