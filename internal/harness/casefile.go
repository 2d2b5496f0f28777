package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Case is a compiled story and the source it should decompile to.
type Case struct {
	// Name uniquely identifies this case.
	Name string `yaml:"name"`

	// Description explains what this case covers.
	Description string `yaml:"description"`

	// Story is the compiled story document, as JSON text.
	Story string `yaml:"story"`

	// Source is the expected decompiled source.
	Source string `yaml:"source"`
}

// LoadCaseFile reads and parses a case YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadCaseFile(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return ParseCase(data)
}

// ParseCase parses case YAML.
func ParseCase(data []byte) (*Case, error) {
	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("invalid case: %w", err)
	}
	return &c, nil
}

// validateCase checks that required fields are present.
func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Story == "" {
		return fmt.Errorf("story is required")
	}
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	return nil
}
