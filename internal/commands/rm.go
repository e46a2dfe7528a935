package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskman/internal/config"
	"taskman/internal/controller"
	"taskman/internal/exitcode"
	"taskman/internal/store"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes   bool
	input io.Reader
}

// SetInput sets where the confirmation answer is read from (for testing).
func (c *RmCmd) SetInput(r io.Reader) {
	c.input = r
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskman rm [--yes] <ref>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	t, code := resolveTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	ctl := newController(cfg, st, errOut, controller.WithConfirm(c.confirm(t.Title, errOut)))
	deleted, err := ctl.Delete(ctx, t.ID)
	if err != nil {
		return exitCode(err, errOut)
	}

	if deleted {
		printOK(cfg, out)
	}
	return exitcode.Success
}

// confirm asks on errOut and reads the answer from the input. Anything but
// y or yes declines, including end of input.
func (c *RmCmd) confirm(title string, errOut io.Writer) controller.ConfirmFunc {
	return func(msg string) bool {
		if c.yes {
			return true
		}
		in := c.input
		if in == nil {
			in = os.Stdin
		}
		fmt.Fprintf(errOut, "%s %q [y/N] ", msg, title)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
