package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Fields without a flag keep their
// current value.
type EditCmd struct {
	search string
	title  optionalString
	desc   optionalString
	noDesc bool
	done   bool
	undone bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, description or status" }
func (c *EditCmd) Usage() string {
	return "todo edit [--search <query>] [--title <t>] [--desc <d> | --no-desc] [--done | --undone] <n>"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.BoolVar(&c.noDesc, "no-desc", false, "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.undone, "undone", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.done && c.undone {
		fmt.Fprintln(errOut, "error: cannot use both --done and --undone")
		return exitcode.UserError
	}
	if c.desc.set && c.noDesc {
		fmt.Fprintln(errOut, "error: cannot use both --desc and --no-desc")
		return exitcode.UserError
	}
	if !c.title.set && !c.desc.set && !c.noDesc && !c.done && !c.undone {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	index, task, code := resolveTask(ctx, svc, c.search, args, errOut)
	if code != exitcode.Success {
		return code
	}

	title := task.TitleText()
	if c.title.set {
		title = c.title.value
	}
	desc := task.Description
	switch {
	case c.desc.set:
		desc = c.desc.Ptr()
	case c.noDesc:
		desc = nil
	}
	completed := task.IsCompleted
	switch {
	case c.done:
		completed = true
	case c.undone:
		completed = false
	}

	if _, err := svc.Update(ctx, index, title, desc, completed); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
