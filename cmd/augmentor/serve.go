package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/augmentor/internal/mcpserver"
	"github.com/jorge-barreto/augmentor/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the pipeline over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: server.addr)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd, setupOpts{preflight: true, console: true})
			if err != nil {
				return err
			}
			defer a.close()

			addr := cmd.String("addr")
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(a.container)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.log.Info("server", "shutting down", nil)
				return srv.Shutdown()
			}
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the augment_prompt tool over MCP stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// stdout carries the protocol: file logging only, no console rendering.
			a, err := setup(ctx, cmd, setupOpts{preflight: true})
			if err != nil {
				return err
			}
			defer a.close()
			return mcpserver.Serve(a.container)
		},
	}
}
