package snapshot

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema is the JSON schema every snapshot document must satisfy
// before restoration attempts to interpret it.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "id", "created_at", "variables", "nodes", "inputs", "outputs"],
  "properties": {
    "version": {"type": "string"},
    "id": {"type": "string"},
    "created_at": {"type": "string"},
    "graph_id": {"type": "string"},
    "variables": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["handle", "type"],
        "properties": {
          "handle": {"type": "integer", "minimum": 0},
          "name": {"type": "string"},
          "type": {"type": "object"},
          "constant": {"type": "boolean"},
          "has_test_value": {"type": "boolean"}
        }
      }
    },
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["op", "outputs"],
        "properties": {
          "op": {"type": "object"},
          "inputs": {"type": "array", "items": {"type": "integer", "minimum": 0}},
          "outputs": {"type": "array", "items": {"type": "integer", "minimum": 0}, "minItems": 1}
        }
      }
    },
    "inputs": {"type": "array", "items": {"type": "integer", "minimum": 0}},
    "outputs": {"type": "array", "items": {"type": "integer", "minimum": 0}},
    "update_mapping": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["input", "output"],
        "properties": {
          "input": {"type": "integer", "minimum": 0},
          "output": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// Validate checks a raw snapshot document against the schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(snapshotSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if !result.Valid() {
		msgs := ""
		for _, desc := range result.Errors() {
			if msgs != "" {
				msgs += "; "
			}
			msgs += desc.String()
		}
		return fmt.Errorf("%w: %s", ErrSchemaInvalid, msgs)
	}
	return nil
}
