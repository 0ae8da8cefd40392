package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTopicTable reads a section -> expected-topics table from a YAML file:
//
//	Budget Narrative:
//	  - budget
//	  - cost
//
// An empty path means "use the built-in table" and returns nil, nil.
func LoadTopicTable(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic table: %w", err)
	}
	table := make(map[string][]string)
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse topic table: %w", err)
	}
	return table, nil
}
