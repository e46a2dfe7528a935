// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/controller"
	"taskman/internal/exitcode"
	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/task"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command reads or writes tasks.
	// Commands like help and version return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings, logger).
	// st is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int
}

// newController creates a controller that reports alerts on errOut.
func newController(cfg *config.Config, st store.Store, errOut io.Writer, opts ...controller.Option) *controller.Controller {
	opts = append([]controller.Option{
		controller.WithLogger(cfg.Logger),
		controller.WithAlert(func(msg string) {
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}),
	}, opts...)
	return controller.New(st, opts...)
}

// exitCode maps a controller error to an exit code. Input errors have
// already been reported through the alert; anything else is a storage
// failure and is printed here.
func exitCode(err error, errOut io.Writer) int {
	switch {
	case err == nil:
		return exitcode.Success
	case isUserError(err):
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		return exitcode.StorageError
	}
}

func isUserError(err error) bool {
	return errors.Is(err, controller.ErrNotFound) ||
		errors.Is(err, controller.ErrTitleRequired) ||
		errors.Is(err, task.ErrInvalidPriority) ||
		errors.Is(err, task.ErrInvalidStatus) ||
		errors.Is(err, task.ErrInvalidDueDate)
}

// localeFor returns the configured display locale, or the one from the
// environment.
func localeFor(cfg *config.Config) render.Locale {
	if cfg.Settings.Display.Locale != "" {
		return render.ParseLocale(cfg.Settings.Display.Locale)
	}
	return render.LocaleFromEnv()
}

// parseFilter validates --status and --priority values.
func parseFilter(status, priority string, errOut io.Writer) (task.Filter, bool) {
	f, err := task.NewFilter(status, priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Filter{}, false
	}
	return f, true
}

// printOK prints "ok" unless quiet.
func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
