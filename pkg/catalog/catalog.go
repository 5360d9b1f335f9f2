// Package catalog describes the database tables and columns that workflow nodes
// can bind to.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrEntityNotFound   = errors.New("entity not found in catalog")
	ErrFieldNotFound    = errors.New("field not found in catalog")
	ErrDuplicateEntity  = errors.New("duplicate entity in catalog")
	ErrDuplicateField   = errors.New("duplicate field in catalog")
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrEmptyName        = errors.New("catalog entries must be named")
)

// FieldType is the coarse column type offered to the node configuration forms.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeUUID    FieldType = "uuid"
)

var fieldTypes = []FieldType{FieldTypeText, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeUUID}

// Field is a column of an entity.
type Field struct {
	Name  string    `yaml:"name"            json:"name"`
	Type  FieldType `yaml:"type"            json:"type"`
	Label string    `yaml:"label,omitempty" json:"label,omitempty"`
}

// Entity is a table rows of which a workflow can be applied to.
type Entity struct {
	Name   string  `yaml:"name"            json:"name"`
	Label  string  `yaml:"label,omitempty" json:"label,omitempty"`
	Fields []Field `yaml:"fields"          json:"fields"`
}

// Field returns the named field of the entity.
func (e Entity) Field(name string) (Field, bool) {
	for _, field := range e.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return Field{}, false
}

// Catalog is an immutable set of entities.
type Catalog struct {
	entities []Entity
	index    map[string]int
}

type document struct {
	Entities []Entity `yaml:"entities"`
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return New(doc.Entities)
}

// New builds a catalog from entity definitions. A field without a type is text.
func New(entities []Entity) (*Catalog, error) {
	c := &Catalog{
		entities: make([]Entity, 0, len(entities)),
		index:    make(map[string]int, len(entities)),
	}

	for _, entity := range entities {
		entity.Name = strings.TrimSpace(entity.Name)
		if entity.Name == "" {
			return nil, ErrEmptyName
		}

		if _, exists := c.index[entity.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, entity.Name)
		}

		fields := make([]Field, 0, len(entity.Fields))
		seen := make(map[string]bool, len(entity.Fields))

		for _, field := range entity.Fields {
			if field.Name == "" {
				return nil, fmt.Errorf("%w: field of %s", ErrEmptyName, entity.Name)
			}

			if seen[field.Name] {
				return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, entity.Name, field.Name)
			}

			seen[field.Name] = true

			if field.Type == "" {
				field.Type = FieldTypeText
			}

			if !slices.Contains(fieldTypes, field.Type) {
				return nil, fmt.Errorf("%w: %s.%s has type %q", ErrInvalidFieldType, entity.Name, field.Name, field.Type)
			}

			fields = append(fields, field)
		}

		entity.Fields = fields
		c.index[entity.Name] = len(c.entities)
		c.entities = append(c.entities, entity)
	}

	return c, nil
}

// Load reads a YAML catalog from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return Parse(data)
}

// Default returns the embedded catalog of the training dashboard tables.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}

	return c
}

// Entities returns the entities in declaration order.
func (c *Catalog) Entities() []Entity {
	return slices.Clone(c.entities)
}

// Entity returns the named entity.
func (c *Catalog) Entity(name string) (Entity, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entity{}, false
	}

	return c.entities[i], true
}

// HasField reports whether the entity exists and has the named field.
func (c *Catalog) HasField(entity, field string) bool {
	e, ok := c.Entity(entity)
	if !ok {
		return false
	}

	_, ok = e.Field(field)

	return ok
}

// Lookup resolves an entity field reference, returning ErrEntityNotFound or
// ErrFieldNotFound when it does not resolve.
func (c *Catalog) Lookup(entity, field string) (Field, error) {
	e, ok := c.Entity(entity)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}

	f, ok := e.Field(field)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, entity, field)
	}

	return f, nil
}
