// Package dbcatalog builds catalog bindings by enumerating the physical
// tables of a live database over database/sql. Each table becomes its own
// entity type: useful when no ORM model set exists and cache invalidation
// should track raw tables.
package dbcatalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/touchset-labs/sqltouch/pkg/catalog"
)

// DefaultQuery enumerates base tables via information_schema, which the
// common engines (Postgres, MySQL, SQL Server) expose. Engines without
// information_schema need WithQuery; SQLite, for example, lists tables in
// sqlite_master.
const DefaultQuery = `SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE'`

// Option configures a Model.
type Option func(*Model)

// WithQuery replaces the enumeration query. The query must return one
// column holding a table name per row.
func WithQuery(query string) Option {
	return func(m *Model) {
		if query != "" {
			m.query = query
		}
	}
}

// WithKey sets the catalog identity. The default identity is derived from
// the *sql.DB handle, so two Models over one handle share a cache entry and
// Models over different handles do not.
func WithKey(key string) Option {
	return func(m *Model) {
		if key != "" {
			m.key = key
		}
	}
}

// Model is a catalog.Model backed by a live database connection. Because a
// connection's schema is instance state rather than type state, Model
// implements catalog.Keyer.
type Model struct {
	db    *sql.DB
	query string
	key   string
}

// New returns a Model enumerating tables of db.
func New(db *sql.DB, opts ...Option) *Model {
	m := &Model{
		db:    db,
		query: DefaultQuery,
		key:   fmt.Sprintf("db:%p", db),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bindings implements catalog.Model with a background context. Callers
// holding a context should prefer BindingsContext.
func (m *Model) Bindings() ([]catalog.Binding, error) {
	return m.BindingsContext(context.Background())
}

// BindingsContext runs the enumeration query and returns one binding per
// table, entity name and table name both set to the reported table name.
// Query and scan failures surface to the caller; nothing is cached here.
func (m *Model) BindingsContext(ctx context.Context) ([]catalog.Binding, error) {
	if m.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := m.db.QueryContext(ctx, m.query)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bindings []catalog.Binding
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		bindings = append(bindings, catalog.Binding{
			Entity: catalog.EntityType{Name: name},
			Table:  name,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return bindings, nil
}

// CatalogKey implements catalog.Keyer.
func (m *Model) CatalogKey() string {
	return m.key
}
