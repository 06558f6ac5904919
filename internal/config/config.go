// Package config holds the tool's configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Artifact store backends.
const (
	StoreFS     = "fs"
	StoreBadger = "badger"
)

// Config controls where ontology releases are read from and how their
// artifacts are produced.
type Config struct {
	// SourceDir holds the ontology release files to process.
	SourceDir string `yaml:"source_dir"`

	// Ontologies maps ontology identifiers to release files, resolved
	// relative to SourceDir unless absolute. When empty the source
	// directory is scanned instead.
	Ontologies map[string]string `yaml:"ontologies,omitempty"`

	// OutputDir receives artifact files when Store is "fs".
	OutputDir string `yaml:"output_dir"`

	// Store selects the artifact backend, "fs" or "badger".
	Store string `yaml:"store"`

	// BadgerPath locates the artifact database when Store is "badger".
	BadgerPath string `yaml:"badger_path,omitempty"`

	// Workers caps traversal parallelism. Zero means one per CPU.
	Workers int `yaml:"workers"`

	// FailFast stops a run on the first ontology error instead of
	// logging it and continuing with the rest.
	FailFast bool `yaml:"fail_fast"`
}

// DefaultConfig returns the configuration used when no file or flags
// override it.
func DefaultConfig() *Config {
	return &Config{
		SourceDir:  "resources/ontologies",
		OutputDir:  "resources/ontologies",
		Store:      StoreFS,
		BadgerPath: "resources/artifacts.db",
	}
}

// Validate reports invalid field combinations.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir must be set")
	}

	switch c.Store {
	case StoreFS:
		if c.OutputDir == "" {
			return fmt.Errorf("output_dir must be set when store is %q", StoreFS)
		}
	case StoreBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("badger_path must be set when store is %q", StoreBadger)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// LoadFromFile reads a YAML configuration file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Merge overlays the non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.SourceDir != "" {
		c.SourceDir = other.SourceDir
	}
	if len(other.Ontologies) > 0 {
		c.Ontologies = other.Ontologies
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if other.Store != "" {
		c.Store = other.Store
	}
	if other.BadgerPath != "" {
		c.BadgerPath = other.BadgerPath
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.FailFast {
		c.FailFast = true
	}
}
