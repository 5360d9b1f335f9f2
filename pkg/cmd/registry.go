// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/trainflow/pkg/catalog"
	"github.com/dukex/trainflow/pkg/registry"
)

// NewCatalog loads the entity catalog from path, or the embedded default when path is empty.
func NewCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return c, nil
}

// NewRegistry creates a registry with every built-in node type.
func NewRegistry(log *slog.Logger, entities *catalog.Catalog) *registry.Registry {
	reg := registry.NewRegistry(log, entities)
	reg.RegisterDefaultNodes()

	return reg
}
