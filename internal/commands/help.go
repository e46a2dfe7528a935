package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// SetRegistry sets the registry listed by help (for testing).
func (c *HelpCmd) SetRegistry(r *Registry) {
	c.registry = r
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskman help [command]" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	registry := c.registry
	if registry == nil {
		registry = DefaultRegistry
	}

	if len(args) > 0 {
		cmd, ok := registry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		fmt.Fprint(out, commonFlagsText)
		return exitcode.Success
	}

	fmt.Fprint(out, "Usage:\n  taskman <command> [common flags] [flags] [args]\n\nCommands:\n")
	for _, cmd := range registry.All() {
		fmt.Fprintf(out, "  %-8s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, " (aliases: %s)", strings.Join(aliases, ", "))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, referenceText, commonFlagsText)
	return exitcode.Success
}

const referenceText = `
Without a command, taskman lists all tasks.

References:
  <ref> is a number shown by list, or a task id or unique id prefix
  (at least 4 characters).

Values:
  --status     all, pending, completed
  --priority   all, low, medium, high (add and edit: low, medium, high)
  --due        YYYY-MM-DD, empty to clear
`

const commonFlagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
