package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

//go:generate go run ../tools/schema-generator -out ../ausec.schema.json

// GenerateSchema generates the JSON Schema for ausec.yml from the Config
// struct. The Extensions field is left out; unmodelled sections such as
// logging are not part of the base schema.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "ausec Configuration"
	schema.Description = "Schema for ausec.yml properties."

	return json.MarshalIndent(schema, "", "  ")
}
