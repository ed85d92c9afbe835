// Package gormcatalog builds catalog bindings from gorm model structs,
// using gorm's schema parser so table names come out exactly as the ORM
// would use them: naming-strategy derived, or overridden by a TableName
// method. No database connection is involved.
package gormcatalog

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/touchset-labs/sqltouch/pkg/catalog"
)

// Bindings builds one binding per model struct using gorm's default naming
// strategy.
func Bindings(models ...any) ([]catalog.Binding, error) {
	return BindingsWithNamer(schema.NamingStrategy{}, models...)
}

// BindingsWithNamer builds one binding per model struct using namer. Each
// model is parsed with gorm's schema parser, so TableName overrides are
// honored; an override returning the empty string yields a table-less
// binding, which the resolver never matches. A parse failure fails the
// whole enumeration.
func BindingsWithNamer(namer schema.Namer, models ...any) ([]catalog.Binding, error) {
	cache := &sync.Map{}
	bindings := make([]catalog.Binding, 0, len(models))
	for _, model := range models {
		s, err := schema.Parse(model, cache, namer)
		if err != nil {
			return nil, fmt.Errorf("parsing model %T: %w", model, err)
		}
		bindings = append(bindings, catalog.Binding{
			Entity: catalog.EntityType{Name: s.Name, Type: s.ModelType},
			Table:  s.Table,
		})
	}
	return bindings, nil
}

// Model is a catalog.Model over a fixed set of gorm model structs. Its
// cache identity is derived from the model types and the namer, so separate
// instances over the same structs share one cache entry.
type Model struct {
	namer  schema.Namer
	models []any
}

// New returns a Model over models using gorm's default naming strategy.
func New(models ...any) *Model {
	return NewWithNamer(schema.NamingStrategy{}, models...)
}

// NewWithNamer returns a Model over models using namer.
func NewWithNamer(namer schema.Namer, models ...any) *Model {
	return &Model{namer: namer, models: models}
}

// Bindings implements catalog.Model.
func (m *Model) Bindings() ([]catalog.Binding, error) {
	return BindingsWithNamer(m.namer, m.models...)
}

// CatalogKey implements catalog.Keyer.
func (m *Model) CatalogKey() string {
	names := make([]string, 0, len(m.models))
	for _, model := range m.models {
		t := reflect.TypeOf(model)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil {
			names = append(names, "<nil>")
			continue
		}
		names = append(names, t.PkgPath()+"."+t.Name())
	}
	return fmt.Sprintf("gorm:%v:%s", m.namer, strings.Join(names, ","))
}
