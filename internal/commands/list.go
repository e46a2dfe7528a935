package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskman` (no args) and `taskman list`.
type ListCmd struct {
	status   string
	priority string
	html     bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskman list [--status <all|pending|completed>] [--priority <all|low|medium|high>] [--html]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", task.All, "")
	fs.StringVar(&c.status, "s", task.All, "")
	fs.StringVar(&c.priority, "priority", task.All, "")
	fs.StringVar(&c.priority, "p", task.All, "")
	fs.BoolVar(&c.html, "html", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, ok := parseFilter(c.status, c.priority, errOut)
	if !ok {
		return exitcode.UserError
	}

	all, err := st.GetAll(ctx)
	if err != nil {
		return exitCode(err, errOut)
	}
	locale := localeFor(cfg)

	if c.html {
		html := render.TaskListHTML(filter.Apply(all), render.ListOptions{Locale: locale, Filter: filter})
		fmt.Fprintln(out, html)
		return exitcode.Success
	}

	// Numbers are positions in the whole collection so that done, edit and
	// rm accept them whatever filter was used to list.
	f := output.NewFormatter(out, locale)
	shown := 0
	for i, t := range all {
		if !filter.Matches(t) {
			continue
		}
		f.Task(i+1, t)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, render.NoTasks)
	}
	return exitcode.Success
}
