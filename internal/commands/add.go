package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc optionalString
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(desc string) {
	c.desc.Set(desc)
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return nil }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add [--desc <text>] <title...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.desc.Ptr(), args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	desc optionalString
}

func (c *CreateCmd) Name() string       { return "create" }
func (c *CreateCmd) Aliases() []string  { return nil }
func (c *CreateCmd) Synopsis() string   { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string      { return "todo create [--desc <text>] <title...>" }
func (c *CreateCmd) NeedsService() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.desc.Ptr(), args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
// The store is loaded first so an empty one is seeded before the new task
// lands in it.
func runAdd(ctx context.Context, cfg *config.Config, svc service.Service, desc *string, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	if _, err := svc.LoadAll(ctx); err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.Create(ctx, title, desc); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// optionalString is a flag.Value that remembers whether it was set, so an
// explicit empty value can be told apart from an omitted flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// Ptr returns nil when the flag was omitted.
func (o *optionalString) Ptr() *string {
	if !o.set {
		return nil
	}
	return service.StringPtr(o.value)
}
