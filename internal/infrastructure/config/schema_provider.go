package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// GenerateSchema returns the JSON schema of the configuration file.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		FieldNameTag:   "toml",
	}
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/upgate/config.schema.json"
	schema.Title = "upgate configuration"
	schema.Description = "Configuration schema for upgate, the unattended update orchestrator"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchemaFile writes config.schema.json into dir and returns its path.
func WriteSchemaFile(dir string) (string, error) {
	data, err := GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaFile := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaFile, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return schemaFile, nil
}

// SchemaProvider serves the generated schema through port.ConfigSchemaProvider.
type SchemaProvider struct{}

// NewSchemaProvider creates a schema provider.
func NewSchemaProvider() *SchemaProvider {
	return &SchemaProvider{}
}

// Schema returns the JSON schema of the configuration file.
func (*SchemaProvider) Schema() ([]byte, error) {
	return GenerateSchema()
}
