// Package schemas holds the data schemas exposed through the
// data://schema/{schema_name} resource. Schemas are defined in an embedded
// YAML document and served as JSON.
package schemas

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/marketing-connect/mcp-services/internal/validation"
)

//go:embed schemas.yaml
var builtinYAML []byte

// ErrNotFound is returned when a schema name is not in the catalog.
var ErrNotFound = errors.New("schema not found")

// Catalog is an ordered, read-only set of named schemas.
type Catalog struct {
	names   []string
	schemas map[string]map[string]any
}

// Builtin returns the catalog parsed from the embedded schemas.yaml.
var Builtin = sync.OnceValues(func() (*Catalog, error) {
	return Parse(builtinYAML)
})

// Parse reads a YAML mapping of schema name to schema body. Names must be
// lowercase identifiers and may not repeat; document order is preserved.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schemas: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("failed to parse schemas: document is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse schemas: line %d: expected a mapping of schema names", root.Line)
	}

	c := &Catalog{schemas: make(map[string]map[string]any, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		name := key.Value
		if err := validation.ValidateIdentifier(name); err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
		if _, dup := c.schemas[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate schema %q", key.Line, name)
		}
		var body map[string]any
		if err := value.Decode(&body); err != nil {
			return nil, fmt.Errorf("schema %q: %w", name, err)
		}
		if body == nil {
			return nil, fmt.Errorf("schema %q: body must be a mapping", name)
		}
		c.names = append(c.names, name)
		c.schemas[name] = body
	}
	return c, nil
}

// Names lists the schema names in document order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Get returns the schema body for name.
func (c *Catalog) Get(name string) (map[string]any, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// JSON returns the schema as indented JSON.
func (c *Catalog) JSON(name string) (string, error) {
	s, ok := c.schemas[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema %q: %w", name, err)
	}
	return string(data), nil
}

// NotFoundMessage is the text served for an unknown schema name.
func (c *Catalog) NotFoundMessage(name string) string {
	return fmt.Sprintf("Schema '%s' not found. Available: %s", name, strings.Join(c.names, ", "))
}
