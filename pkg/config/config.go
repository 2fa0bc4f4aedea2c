// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config carries the process-wide settings: where table files and the
// metadata document live, and the limit applied to SELECTs that omit one.
// It is passed explicitly; there is no ambient state.
type Config struct {
	DataDir      string `yaml:"data_dir"`
	MetadataFile string `yaml:"metadata_file"`
	DefaultLimit int    `yaml:"default_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:      "data",
		MetadataFile: "metadata.json",
		DefaultLimit: 100,
	}
}

// Load reads a YAML config file. Absent keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("config %s: data_dir must not be empty", path)
	}
	if cfg.MetadataFile == "" {
		return nil, fmt.Errorf("config %s: metadata_file must not be empty", path)
	}
	if cfg.DefaultLimit < 0 {
		return nil, fmt.Errorf("config %s: default_limit must not be negative", path)
	}
	return cfg, nil
}

// MetadataPath is where the catalog document lives.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.DataDir, c.MetadataFile)
}
