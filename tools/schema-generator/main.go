// Command schema-generator writes the JSON Schema for ausec.yml so editors
// can validate config files without running ausec.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/logging"
	"github.com/invopop/jsonschema"
)

func main() {
	out := flag.String("out", "ausec.schema.json", "Output file")
	flag.Parse()

	base, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(base, &doc); err != nil {
		log.Fatalf("Error decoding base schema: %v", err)
	}

	// logging is an extension section, not a Config field.
	r := &jsonschema.Reflector{ExpandedStruct: true, FieldNameTag: "yaml"}
	logSchema := r.Reflect(&logging.Config{})
	logSchema.Required = nil
	if props, ok := doc["properties"].(map[string]interface{}); ok {
		props["logging"] = logSchema
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated schema at %s", *out)
}
