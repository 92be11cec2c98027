package content

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const scenarioSchemaURL = "schema://scenario.json"

const scenarioSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title", "scenes"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "category": {"type": "string"},
    "difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
    "scenes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "options"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "image": {"type": "string"},
          "question": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 2,
            "items": {
              "type": "object",
              "required": ["id", "text", "correct", "score"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "text": {"type": "string", "minLength": 1},
                "correct": {"type": "boolean"},
                "score": {"type": "integer", "minimum": 0},
                "explanation": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func scenarioValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(scenarioSchema)))
		if err != nil {
			compileErr = fmt.Errorf("parse scenario schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(scenarioSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add scenario schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(scenarioSchemaURL)
	})
	return compiledSchema, compileErr
}

// ValidateScenarioJSON checks a raw scenario document against the scenario schema.
func ValidateScenarioJSON(raw []byte) error {
	schema, err := scenarioValidator()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
