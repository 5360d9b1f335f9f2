// Package registry keeps the node type factories of the editor palette and
// validates node data against their schemas and the entity catalog.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dukex/trainflow/pkg/catalog"
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidNodeData = errors.New("invalid node data")

// ValidationError lists every problem found in one node's data.
type ValidationError struct {
	NodeID   string
	NodeType models.NodeType
	Problems []string
}

func (e *ValidationError) Error() string {
	subject := string(e.NodeType)
	if e.NodeID != "" {
		subject = e.NodeID
	}

	return fmt.Sprintf("invalid %s data: %s", subject, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidNodeData
}

type Registry struct {
	logger    *slog.Logger
	catalog   *catalog.Catalog
	factories map[models.NodeType]protocol.NodeFactory
}

func NewRegistry(log *slog.Logger, entities *catalog.Catalog) *Registry {
	return &Registry{
		logger:    log,
		catalog:   entities,
		factories: make(map[models.NodeType]protocol.NodeFactory),
	}
}

func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.factories[factory.ID()] = factory

	r.logger.Debug("Registered node type", "type", factory.ID())
}

// Catalog returns the entity catalog node references are checked against.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// GetNodeFactory returns the factory of a node type.
func (r *Registry) GetNodeFactory(nodeType models.NodeType) (protocol.NodeFactory, bool) {
	factory, ok := r.factories[nodeType]

	return factory, ok
}

// GetAvailableNodes returns the registered factories in palette order.
func (r *Registry) GetAvailableNodes() []protocol.NodeFactory {
	factories := make([]protocol.NodeFactory, 0, len(r.factories))

	for _, nodeType := range models.NodeTypes {
		if factory, ok := r.factories[nodeType]; ok {
			factories = append(factories, factory)
		}
	}

	extra := make([]protocol.NodeFactory, 0)

	for nodeType, factory := range r.factories {
		if !slices.Contains(models.NodeTypes, nodeType) {
			extra = append(extra, factory)
		}
	}

	slices.SortFunc(extra, func(a, b protocol.NodeFactory) int {
		return strings.Compare(string(a.ID()), string(b.ID()))
	})

	return append(factories, extra...)
}

// ValidateNode checks a node's data against its type schema and the catalog.
func (r *Registry) ValidateNode(node *models.WorkflowNode) error {
	data, err := node.DataMap()
	if err != nil {
		return err
	}

	err = r.Validate(node.Type, data)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		validationErr.NodeID = node.ID
	}

	return err
}

// Validate checks a flattened data payload of the given node type. Every field is
// optional so incomplete drafts pass; values that are set must match the schema
// and entity or field references must resolve in the catalog.
func (r *Registry) Validate(nodeType models.NodeType, data map[string]any) error {
	factory, ok := r.factories[nodeType]
	if !ok {
		return fmt.Errorf("%w: %q is not registered", models.ErrUnknownNodeType, nodeType)
	}

	problems, err := validateJSONSchema(data, factory.Schema())
	if err != nil {
		return err
	}

	if len(problems) > 0 {
		return &ValidationError{NodeType: nodeType, Problems: problems}
	}

	decoded, err := models.DecodeNodeData(nodeType, data)
	if err != nil {
		return &ValidationError{NodeType: nodeType, Problems: []string{err.Error()}}
	}

	for _, ref := range factory.References(decoded.Config) {
		if problem := r.checkReference(ref); problem != "" {
			problems = append(problems, problem)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{NodeType: nodeType, Problems: problems}
	}

	return nil
}

func (r *Registry) checkReference(ref protocol.Reference) string {
	if r.catalog == nil {
		return ""
	}

	if ref.Field == "" {
		if _, ok := r.catalog.Entity(ref.Entity); !ok {
			return fmt.Sprintf("%s: unknown entity %q", ref.Path, ref.Entity)
		}

		return ""
	}

	if ref.Entity == "" {
		return fmt.Sprintf("%s: field %q needs an entityType", ref.Path, ref.Field)
	}

	if _, ok := r.catalog.Entity(ref.Entity); !ok {
		// reported once by the entityType reference
		return ""
	}

	if !r.catalog.HasField(ref.Entity, ref.Field) {
		return fmt.Sprintf("%s: entity %q has no field %q", ref.Path, ref.Entity, ref.Field)
	}

	return ""
}

// validateJSONSchema returns the schema violations of data.
func validateJSONSchema(data map[string]any, schema map[string]any) ([]string, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate node data: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return problems, nil
}
