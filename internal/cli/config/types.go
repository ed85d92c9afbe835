// Package config provides configuration management for the sqltouch CLI.
//
// Configuration is layered: defaults, then an optional sqltouch.yaml file,
// then SQLTOUCH_-prefixed environment variables, then explicitly set flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Catalog is the path to a YAML catalog file mapping entities to tables.
	Catalog string `koanf:"catalog"`

	// Output selects the rendering format for command results.
	Output string `koanf:"output"`

	// Verbose enables debug logging on stderr.
	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultOutput = "text"
)
