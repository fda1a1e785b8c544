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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                      List all tasks, newest first
  todo list [--search <query>]              List tasks (alias: ls)
  todo search <query...>                    List tasks whose title contains the query
  todo add [--desc <text>] <title...>       Create a task
  todo create [--desc <text>] <title...>    Same as add
  todo edit [flags] <n>                     Change task n
      --title <t>   New title
      --desc <d>    New description (--desc "" keeps an empty one)
      --no-desc     Remove the description
      --done        Mark done
      --undone      Mark open
  todo toggle <n>                           Flip task n between open and done (alias: done)
  todo rm <n>                               Delete task n
  todo show <n>                             Show task n in detail
  todo export [--search <query>]            Write tasks as YAML
  todo serve [--addr <host:port>]           Serve the JSON API until interrupted
  todo login                                Authorize Google Tasks seeding
  todo logout                               Remove the stored Google token
  todo help
  todo version

Task numbers are positions in the list output. edit, toggle, rm and show
accept --search <query> to number within a search instead.

On first use an empty database is filled from the configured seed source
(config.yaml: seed.source dummyjson or googletasks; seed.enabled false to
skip).

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
