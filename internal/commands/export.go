package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportedTask is the YAML shape written by export. Absent fields are
// omitted; an empty description is kept as "".
type ExportedTask struct {
	ID          string    `yaml:"id"`
	Title       *string   `yaml:"title,omitempty"`
	Description *string   `yaml:"description,omitempty"`
	Completed   bool      `yaml:"completed"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// ExportCmd implements the export command.
type ExportCmd struct {
	search string
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Write tasks as YAML to stdout" }
func (c *ExportCmd) Usage() string      { return "todo export [--search <query>]" }
func (c *ExportCmd) NeedsService() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tasks, err := loadView(ctx, svc, c.search)
	if err != nil {
		return reportError(errOut, err)
	}

	doc := make([]ExportedTask, len(tasks))
	for i, t := range tasks {
		doc[i] = ExportedTask{
			ID:          t.ID.String(),
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.IsCompleted,
			CreatedAt:   t.CreatedAt.UTC(),
		}
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(errOut, "error: failed to encode tasks: %v\n", err)
		return exitcode.UserError
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(errOut, "error: failed to encode tasks: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
