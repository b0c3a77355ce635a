package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaURL = "tack://snapshot.schema.json"

// snapshotSchema rejects snapshots that lack a required entity field.
// Display state (expandedCards, showArchived, showTop10, selectedProjectId)
// may be missing and falls back to defaults.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["projects", "columns"],
  "properties": {
    "projects": {"type": "array", "items": {"$ref": "#/$defs/project"}},
    "columns": {"type": "array", "items": {"$ref": "#/$defs/column"}},
    "expandedCards": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "boolean"}
    },
    "showArchived": {"type": ["boolean", "null"]},
    "showTop10": {"type": ["boolean", "null"]},
    "selectedProjectId": {"$ref": "#/$defs/optionalId"}
  },
  "$defs": {
    "id": {"type": ["string", "integer"]},
    "optionalId": {"type": ["string", "integer", "null"]},
    "project": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "name": {"type": "string"}
      }
    },
    "column": {
      "type": "object",
      "required": ["id", "title", "cards"],
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "title": {"type": "string"},
        "projectId": {"$ref": "#/$defs/optionalId"},
        "cards": {"type": "array", "items": {"$ref": "#/$defs/card"}}
      }
    },
    "card": {
      "type": "object",
      "required": ["id", "title", "color", "notes", "archived", "progress"],
      "properties": {
        "id": {"$ref": "#/$defs/id"},
        "title": {"type": "string"},
        "color": {"type": "string"},
        "dueDate": {"type": ["string", "null"]},
        "notes": {"type": "string"},
        "archived": {"type": "boolean"},
        "progress": {"type": "number"}
      }
    }
  }
}`

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func loadSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
			compiledSchemaErr = fmt.Errorf("add snapshot schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(snapshotSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// SchemaViolation is one failed schema assertion.
type SchemaViolation struct {
	Path    string
	Message string
}

func (v SchemaViolation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// validateSchema checks raw snapshot JSON against the snapshot schema.
func validateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidSnapshot, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON document", ErrInvalidSnapshot)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		violations := collectViolations(nil, ve)
		msgs := make([]string, 0, len(violations))
		for _, v := range violations {
			msgs = append(msgs, v.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(msgs, "; "))
	}

	return nil
}

func collectViolations(out []SchemaViolation, err *jsonschema.ValidationError) []SchemaViolation {
	if len(err.Causes) == 0 {
		return append(out, SchemaViolation{
			Path:    strings.TrimPrefix(err.InstanceLocation, "/"),
			Message: err.Message,
		})
	}
	for _, cause := range err.Causes {
		out = collectViolations(out, cause)
	}
	return out
}
