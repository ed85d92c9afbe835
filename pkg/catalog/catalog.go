// Package catalog defines the schema boundary for statement analysis:
// logical entity types, their physical table bindings, and the resolver that
// matches extracted table names back to the entity types they touch.
package catalog

import (
	"reflect"

	"github.com/touchset-labs/sqltouch/pkg/scan"
)

// EntityType identifies one logical entity type known to a schema model.
type EntityType struct {
	Name string       // canonical name: struct name for ORM entities, table name for external catalogs
	Type reflect.Type // backing Go type, nil when the model is not type-backed
}

// Binding maps an entity type to its physical table. An empty Table means
// the entity has no table mapping (view-backed or computed); such bindings
// are excluded from matching.
type Binding struct {
	Entity EntityType
	Table  string
}

// Model enumerates the entity-to-table bindings of one schema context.
//
// A model's cache identity is its dynamic type unless it implements Keyer.
// Every instance sharing an identity must describe the same schema: bindings
// are computed once per identity and reused for the process lifetime.
type Model interface {
	Bindings() ([]Binding, error)
}

// Keyer overrides a model's cache identity. Models whose schema is scoped to
// an instance rather than a type (a live database connection, a file on
// disk) implement Keyer so distinct instances do not share one cache entry.
type Keyer interface {
	CatalogKey() string
}

// Static is a fixed, in-memory Model. All Static values share one dynamic
// type; wrap distinct catalogs with Keyed before handing them to a caching
// analyzer, or resolve against them directly with Affected.
type Static []Binding

// Bindings returns the catalog as-is. It never fails.
func (s Static) Bindings() ([]Binding, error) { return s, nil }

// Keyed gives m an explicit cache identity, overriding any identity m
// carries itself.
func Keyed(key string, m Model) Model {
	return keyed{Model: m, key: key}
}

type keyed struct {
	Model
	key string
}

func (k keyed) CatalogKey() string { return k.key }

// Affected returns the entity types whose table appears in tables, in
// catalog order. Names are compared case-sensitively after bracket and quote
// decoration is stripped from both sides. Duplicate entity types are
// possible only when the catalog itself repeats a table name.
func Affected(bindings []Binding, tables []string) []EntityType {
	if len(bindings) == 0 || len(tables) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[scan.StripQuotes(t)] = struct{}{}
	}
	var affected []EntityType
	for _, b := range bindings {
		if b.Table == "" {
			continue
		}
		if _, ok := set[scan.StripQuotes(b.Table)]; ok {
			affected = append(affected, b.Entity)
		}
	}
	return affected
}
