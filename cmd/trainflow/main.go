package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/trainflow/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "trainflow",
		Usage:                 "Inspect training workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "catalog-path",
				Usage:   "YAML file describing the entities nodes can bind to",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(os.Stderr, log.FormatText, command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewNodeTypesCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
