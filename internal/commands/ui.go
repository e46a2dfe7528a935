package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/store"
	"taskman/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command, the interactive terminal front end.
type UICmd struct{}

func (c *UICmd) Name() string                   { return "ui" }
func (c *UICmd) Aliases() []string              { return []string{"tui"} }
func (c *UICmd) Synopsis() string               { return "Open the interactive task screen" }
func (c *UICmd) Usage() string                  { return "taskman ui" }
func (c *UICmd) NeedsStore() bool               { return true }
func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := tui.Run(ctx, st, cfg.Logger, tui.WithLocale(localeFor(cfg))); err != nil {
		return exitCode(err, errOut)
	}
	return exitcode.Success
}
