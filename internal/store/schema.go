package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const tasksSchemaURL = "taskman://schemas/tasks.json"

// tasksSchema describes the persisted collection. Unknown properties are
// allowed so that older binaries can read newer data.
const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "priority", "status"],
    "properties": {
      "id":          {"type": "string", "minLength": 1},
      "title":       {"type": "string", "minLength": 1},
      "description": {"type": ["string", "null"]},
      "due_date":    {"type": ["string", "null"]},
      "priority":    {"enum": ["low", "medium", "high"]},
      "status":      {"enum": ["pending", "completed"]}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(tasksSchemaURL, strings.NewReader(tasksSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(tasksSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// validateDocument checks a decoded JSON document against the schema and
// returns the first leaf failure with its location.
func validateDocument(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return firstLeaf(ve)
		}
		return err
	}
	return nil
}

func firstLeaf(ve *jsonschema.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}
