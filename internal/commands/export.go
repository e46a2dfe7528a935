package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/export"
	"taskman/internal/store"
	"taskman/internal/task"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format   string
	output   string
	status   string
	priority string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write tasks as " + strings.Join(export.Formats, ", ") }
func (c *ExportCmd) Usage() string {
	return "taskman export [--format <" + strings.Join(export.Formats, "|") + ">] [--output <file>] [--status <s>] [--priority <p>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.format, "f", "json", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
	fs.StringVar(&c.status, "status", task.All, "")
	fs.StringVar(&c.priority, "priority", task.All, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, ok := parseFilter(c.status, c.priority, errOut)
	if !ok {
		return exitcode.UserError
	}

	data, err := export.NewExporter(st, localeFor(cfg)).Export(ctx, c.format, filter)
	if errors.Is(err, export.ErrUnknownFormat) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err != nil {
		return exitCode(err, errOut)
	}

	if c.output == "" || c.output == "-" {
		if _, err := out.Write(data); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	if err := os.WriteFile(c.output, data, 0600); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	cfg.Logger.Debug("exported tasks", "format", c.format, "path", c.output, "bytes", len(data))
	printOK(cfg, out)
	return exitcode.Success
}
