package config

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

var rootSchema *jsonschema.Schema

func init() {
	js, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource("agent_config.schema.json", js); err != nil {
		panic(err)
	}
	rootSchema, err = compiler.Compile("agent_config.schema.json")
	if err != nil {
		panic(err)
	}
}

// Schema returns the JSON Schema the configuration is validated against.
func Schema() []byte {
	return schemaJSON
}

// ValidateSchema checks raw configuration bytes against the schema.
func ValidateSchema(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return rootSchema.Validate(doc)
}
