package commands

import (
	"context"
	"flag"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/store"
	"taskman/internal/task"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Aliases() []string              { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string               { return "Mark a task completed" }
func (c *DoneCmd) Usage() string                  { return "taskman done <ref>" }
func (c *DoneCmd) NeedsStore() bool               { return true }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, st, task.StatusCompleted, args, out, errOut)
}

// UndoCmd implements the undo command, the inverse of done.
type UndoCmd struct{}

func (c *UndoCmd) Name() string                   { return "undo" }
func (c *UndoCmd) Aliases() []string              { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string               { return "Mark a task pending" }
func (c *UndoCmd) Usage() string                  { return "taskman undo <ref>" }
func (c *UndoCmd) NeedsStore() bool               { return true }
func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, st, task.StatusPending, args, out, errOut)
}

// runSetStatus is the shared implementation for done and undo.
func runSetStatus(ctx context.Context, cfg *config.Config, st store.Store, status task.Status, args []string, out, errOut io.Writer) int {
	t, code := resolveTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := newController(cfg, st, errOut).SetStatus(ctx, t.ID, status); err != nil {
		return exitCode(err, errOut)
	}

	printOK(cfg, out)
	return exitcode.Success
}
