package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dukex/trainflow/pkg/cmd"
	"github.com/dukex/trainflow/pkg/log"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/urfave/cli/v3"
)

func NewNodeTypesCommand() *cli.Command {
	return &cli.Command{
		Name:    "node-types",
		Aliases: []string{"nt"},
		Usage:   "List the node types of the editor palette",
		Action: func(_ context.Context, command *cli.Command) error {
			entities, err := cmd.NewCatalog(command.String("catalog-path"))
			if err != nil {
				return err
			}

			renderNodeTypes(os.Stdout, cmd.NewRegistry(log.WithModule("trainflow"), entities))

			return nil
		},
	}
}

func renderNodeTypes(w io.Writer, reg *registry.Registry) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Node types"))

	for _, factory := range reg.GetAvailableNodes() {
		_, _ = fmt.Fprintf(w, "  %-14s %s\n", nodeIDStyle.Render(string(factory.ID())), factory.Name())
		_, _ = fmt.Fprintf(w, "  %-14s %s\n", "", detailStyle.Render(factory.Description()))
	}
}
