package commands

import (
	"context"
	"flag"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/store"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command. Only the given fields change; the
// status is kept.
type EditCmd struct {
	title       optString
	description optString
	dueDate     optString
	priority    optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskman edit [--title <text>] [--desc <text>] [--due <YYYY-MM-DD>] [--priority <low|medium|high>] <ref>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{} // fs.Var does not reset values between parses
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.dueDate, "due", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	t, code := resolveTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	ctl := newController(cfg, st, errOut)
	form, err := ctl.Edit(ctx, t.ID)
	if err != nil {
		return exitCode(err, errOut)
	}

	in := form.Input()
	if c.title.set {
		in.Title = c.title.value
	}
	if c.description.set {
		in.Description = c.description.value
	}
	if c.dueDate.set {
		in.DueDate = c.dueDate.value
	}
	if c.priority.set {
		in.Priority = c.priority.value
	}

	if err := ctl.Submit(ctx, in); err != nil {
		return exitCode(err, errOut)
	}

	printOK(cfg, out)
	return exitcode.Success
}
