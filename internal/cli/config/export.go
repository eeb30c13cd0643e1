package config

import (
	"fmt"

	"github.com/knadh/koanf/maps"
	"gopkg.in/yaml.v3"
)

// Map returns the configuration as nested maps keyed like the config
// file.
func (c *Config) Map() (map[string]any, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// Flat returns the configuration keyed by dotted paths (storage.engine).
func (c *Config) Flat() (map[string]any, error) {
	m, err := c.Map()
	if err != nil {
		return nil, err
	}
	flat, _ := maps.Flatten(m, nil, ".")
	return flat, nil
}
