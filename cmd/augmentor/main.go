package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/mcpserver"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

var version = "dev"

func main() {
	mcpserver.Version = version

	app := &cli.Command{
		Name:        "augmentor",
		Usage:       "Research-augmented prompt pipeline",
		Version:     version,
		Description: "Run 'augmentor docs' for documentation on configuration, stages, the HTTP API, and more.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.FileName, Usage: "Path to the config file"},
		},
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			chatCmd(),
			clarifyCmd(),
			statusCmd(),
			doctorCmd(),
			historyCmd(),
			showCmd(),
			serveCmd(),
			mcpCmd(),
			docsCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}
