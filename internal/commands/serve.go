package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return []string{"web"} }
func (c *ServeCmd) Synopsis() string  { return "Serve the task page over HTTP" }
func (c *ServeCmd) Usage() string     { return "taskman serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsStore() bool  { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.Settings.Serve.Addr
	}

	opts := web.Options{
		Store:         st,
		Logger:        cfg.Logger,
		DefaultLocale: render.LocaleFromEnv(),
	}
	if cfg.Settings.Display.Locale != "" {
		l := render.ParseLocale(cfg.Settings.Display.Locale)
		opts.Locale = &l
	}

	srv, err := web.New(opts)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "serving on http://%s\n", addr)
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
