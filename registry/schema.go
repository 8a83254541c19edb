package registry

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/emergence/errors"
)

// definitionSchema validates raw definition documents before they are
// decoded into typed structs, so malformed files fail with a precise
// pointer into the document instead of a half-populated definition.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "component definition document",
  "type": "object",
  "required": ["components"],
  "additionalProperties": false,
  "properties": {
    "components": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type", "domain"],
        "additionalProperties": false,
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "domain": {
            "type": "string",
            "enum": ["biological", "cyber", "environmental", "economic", "social", "physical"]
          },
          "description": {"type": "string"},
          "emergence_potential": {"type": "number", "minimum": 0, "maximum": 1},
          "properties": {
            "type": "object",
            "additionalProperties": {
              "type": "object",
              "additionalProperties": false,
              "properties": {
                "role": {"type": "string", "enum": ["transmission", "defense", "neutral"]},
                "default": {"type": "number"},
                "min": {"type": "number"},
                "max": {"type": "number"}
              }
            }
          },
          "affinities": {
            "type": "object",
            "additionalProperties": {"type": "number"}
          },
          "profile": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "update_cost": {"type": "number", "minimum": 0},
              "memory_footprint": {"type": "integer", "minimum": 0},
              "complexity": {"type": "string", "enum": ["constant", "linear", "quadratic"]}
            }
          }
        }
      }
    }
  }
}`

// validateDocument checks a decoded definition document against the
// embedded JSON schema.
func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "validateDocument", "schema evaluation")
	}

	if !result.Valid() {
		// Report the first violation; the rest usually cascade from it.
		violation := result.Errors()[0]
		return errors.WrapInvalid(
			errors.ErrInvalidDefinition,
			"Loader", "validateDocument", violation.String())
	}
	return nil
}
