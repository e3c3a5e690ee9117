package scanner

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config controls how a Scanner locates and parses a SyncTeX file.
type Config struct {
	BuildDirectory string `yaml:"buildDirectory,omitempty"` // retried if the output-relative lookup fails
	StrongMode     bool   `yaml:"strongMode,omitempty"`     // disable the ±line display-query perturbation sweep
	TryCount       int    `yaml:"tryCount,omitempty"`       // max ±line perturbation steps; 0 uses the package default
}

// Default returns the Config a bare scanner_new_with_output_file call uses.
func Default() *Config {
	return &Config{
		StrongMode: false,
		TryCount:   100,
	}
}

// LoadConfig reads a Config override from YAML, starting from Default() so
// fields the file omits keep their defaults (build/CI use, §6.3).
func LoadConfig(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("scanner: parse config: %w", err)
	}
	return cfg, nil
}
