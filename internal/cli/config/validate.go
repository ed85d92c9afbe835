package config

import "fmt"

// outputFormats lists the rendering formats commands understand.
var outputFormats = []string{"text", "json"}

// OutputFormats returns the valid values for the output option.
func OutputFormats() []string {
	return outputFormats
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for _, f := range outputFormats {
		if c.Output == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (expected one of: text, json)", c.Output)
}
