package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dukex/trainflow/pkg/cmd"
	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/log"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/urfave/cli/v3"
)

var (
	ErrMissingFile      = errors.New("a workflow file is required")
	ErrWorkflowNotReady = errors.New("workflow is not ready to be saved")
)

// validation is the outcome of checking one workflow file.
type validation struct {
	Workflow  *models.Workflow
	Readiness services.ReadinessReport
	// NodeProblems maps node ids to their configuration problems.
	NodeProblems map[string]string
}

func (v validation) ok() bool {
	return v.Readiness.CanSave && len(v.NodeProblems) == 0
}

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Print the save checklist of a workflow JSON file",
		ArgsUsage: "<file>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return ErrMissingFile
			}

			entities, err := cmd.NewCatalog(command.String("catalog-path"))
			if err != nil {
				return err
			}

			reg := cmd.NewRegistry(log.WithModule("trainflow"), entities)

			result, err := validateFile(reg, path)
			if err != nil {
				return err
			}

			renderValidation(os.Stdout, result)

			if !result.ok() {
				return cli.Exit(ErrWorkflowNotReady, 1)
			}

			return nil
		},
	}
}

func validateFile(reg *registry.Registry, path string) (validation, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return validation{}, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return validation{}, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	err = graph.CheckIntegrity(workflow.Nodes, workflow.Edges)
	if err != nil {
		return validation{}, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}

	return validateWorkflow(reg, &workflow), nil
}

func validateWorkflow(reg *registry.Registry, workflow *models.Workflow) validation {
	result := validation{
		Workflow:     workflow,
		Readiness:    services.NewReadinessReport(workflow.Name, workflow.Nodes, workflow.Edges),
		NodeProblems: make(map[string]string),
	}

	for _, node := range workflow.Nodes {
		err := reg.ValidateNode(node)
		if err != nil {
			result.NodeProblems[node.ID] = err.Error()
		}
	}

	return result
}

func renderValidation(w io.Writer, result validation) {
	name := result.Workflow.Name
	if name == "" {
		name = "(unnamed)"
	}

	readiness := result.Readiness

	_, _ = fmt.Fprintln(w, titleStyle.Render("Workflow: "+name))

	checklist := []struct {
		ok    bool
		label string
	}{
		{readiness.HasName, "has a name"},
		{readiness.HasNodes, "has nodes (" + strconv.Itoa(len(result.Workflow.Nodes)) + ")"},
		{readiness.HasOneStart, "exactly one start node (" + strconv.Itoa(readiness.StartCount) + ")"},
		{readiness.HasEnd, "at least one end node (" + strconv.Itoa(readiness.EndCount) + ")"},
		{readiness.ConditionLabelsOK, "condition branches labeled True and False"},
	}

	for _, item := range checklist {
		_, _ = fmt.Fprintf(w, "  %s %s\n", checkMark(item.ok), item.label)
	}

	for _, nodeID := range readiness.InvalidConditions {
		_, _ = fmt.Fprintf(w, "      %s %s\n", nodeIDStyle.Render(nodeID), detailStyle.Render("has invalid branches"))
	}

	for _, node := range result.Workflow.Nodes {
		if problem, ok := result.NodeProblems[node.ID]; ok {
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", checkMark(false), nodeIDStyle.Render(node.ID), detailStyle.Render(problem))
		}
	}

	summary := passStyle.Render("Ready to save")
	if !result.ok() {
		summary = failStyle.Render("Not ready to save")
	}

	_, _ = fmt.Fprintln(w, summaryStyle.Render(summary))
}
