package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	names := make([]string, 0)
	for _, entity := range c.Entities() {
		names = append(names, entity.Name)
	}

	assert.Equal(t, []string{
		"courses",
		"training_plans",
		"training_sessions",
		"training_requests",
		"evaluations",
		"scorecards",
		"users",
		"costs",
	}, names)

	assert.True(t, c.HasField("training_requests", "estimated_cost"))
	assert.True(t, c.HasField("users", "role"))
	assert.False(t, c.HasField("users", "salary"))
	assert.False(t, c.HasField("payroll", "id"))
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	field, err := c.Lookup("courses", "cost")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeNumber, field.Type)

	_, err = c.Lookup("payroll", "id")
	require.ErrorIs(t, err, ErrEntityNotFound)

	_, err = c.Lookup("courses", "price")
	require.ErrorIs(t, err, ErrFieldNotFound)
}

func TestCatalog_EntitiesIsACopy(t *testing.T) {
	c := Default()

	entities := c.Entities()
	entities[0].Name = "changed"

	_, ok := c.Entity("courses")
	assert.True(t, ok)
	assert.Equal(t, "courses", c.Entities()[0].Name)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "valid with default field type",
			doc: `
entities:
  - name: badges
    fields:
      - name: title
      - name: points
        type: number
`,
		},
		{
			name: "duplicate entity",
			doc: `
entities:
  - name: badges
  - name: badges
`,
			wantErr: ErrDuplicateEntity,
		},
		{
			name: "duplicate field",
			doc: `
entities:
  - name: badges
    fields:
      - name: title
      - name: title
`,
			wantErr: ErrDuplicateField,
		},
		{
			name: "unknown field type",
			doc: `
entities:
  - name: badges
    fields:
      - name: title
        type: blob
`,
			wantErr: ErrInvalidFieldType,
		},
		{
			name: "unnamed entity",
			doc: `
entities:
  - label: Badges
`,
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.doc))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			field, err := c.Lookup("badges", "title")
			require.NoError(t, err)
			assert.Equal(t, FieldTypeText, field.Type)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("entities: [unterminated"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	err := os.WriteFile(path, []byte("entities:\n  - name: rooms\n    fields:\n      - {name: capacity, type: number}\n"), 0o600)
	require.NoError(t, err)

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.HasField("rooms", "capacity"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
