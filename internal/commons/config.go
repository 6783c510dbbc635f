package commons

import (
	"bytes"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"bodega/internal/config"
)

// LoadConfig reads a YAML config file. It is the file-based alternative
// to the env-driven config.Load, selected via CONFIG_FILE. Unknown keys
// are rejected so a typo'd setting fails at startup instead of being
// silently ignored.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg config.Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
