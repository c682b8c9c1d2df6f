package prefabs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	SchemaWorld   = "world.schema.json"
	SchemaProfile = "profile.schema.json"
)

var ErrSchema = errors.New("prefabs: schema violation")

const schemaBase = "horde://schemas/"

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	names := []string{SchemaWorld, SchemaProfile}
	for _, name := range names {
		data, err := readSchema(name)
		if err != nil {
			schemaErr = fmt.Errorf("prefabs: read schema %s: %w", name, err)
			return
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("prefabs: add schema %s: %w", name, err)
			return
		}
	}
	schemas = make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(schemaBase + name)
		if err != nil {
			schemaErr = fmt.Errorf("prefabs: compile schema %s: %w", name, err)
			return
		}
		schemas[name] = s
	}
}

// Validate checks a YAML document against one of the embedded schemas.
func Validate(schema string, data []byte) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	s, ok := schemas[schema]
	if !ok {
		return fmt.Errorf("prefabs: unknown schema %q", schema)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("prefabs: parse: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// jsonschema only understands encoding/json values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("prefabs: convert: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("prefabs: convert: %w", err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
