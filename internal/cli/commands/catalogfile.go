package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/touchset-labs/sqltouch/pkg/catalog"
)

// catalogEntry is one entity-to-table binding in a YAML catalog file.
type catalogEntry struct {
	Entity string `yaml:"entity"`
	Table  string `yaml:"table"`
}

// loadCatalogFile reads a YAML catalog, a list of {entity, table} pairs,
// into a Model keyed by the file path so analyzers cache each file
// separately.
func loadCatalogFile(path string) (catalog.Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []catalogEntry
	if err := yaml.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	bindings := make([]catalog.Binding, 0, len(entries))
	for _, e := range entries {
		if e.Entity == "" {
			return nil, fmt.Errorf("catalog file %s: entry with empty entity name", path)
		}
		bindings = append(bindings, catalog.Binding{
			Entity: catalog.EntityType{Name: e.Entity},
			Table:  e.Table,
		})
	}

	return catalog.Keyed("file:"+path, catalog.Static(bindings)), nil
}
