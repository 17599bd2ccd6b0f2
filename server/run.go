package server

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"retainformat/feedback"
	"retainformat/state"
)

// Flags returns flags of "serve" command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "listen", Usage: "`ADDRESS` to listen on (overrides configuration)"},
	}
}

// Run is the action of "serve" command, it blocks until context is
// cancelled.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() > 0 {
		env.Log.Warn("Malformed command line, serve takes no arguments", zap.Strings("ignoring", cmd.Args().Slice()))
	}
	if err := env.ApplyDocumentConfig(); err != nil {
		return fmt.Errorf("unable to apply document configuration: %w", err)
	}

	fb, err := feedback.Open(&env.Cfg.Feedback, env.Log)
	if err != nil {
		return fmt.Errorf("unable to open feedback storage: %w", err)
	}
	defer func() {
		if er := fb.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close feedback storage: %w", er))
		}
	}()

	listen := cmd.String("listen")
	if len(listen) == 0 {
		listen = env.Cfg.Server.Listen
	}
	return New(env.Cfg, env.Stylesheet, fb, env.Log).Serve(ctx, listen)
}
