package port

// ConfigSchemaProvider provides the JSON schema of the configuration file.
type ConfigSchemaProvider interface {
	// Schema returns the indented JSON schema document.
	Schema() ([]byte, error)
}
