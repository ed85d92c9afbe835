package dbcatalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchset-labs/sqltouch/pkg/analyzer"
	"github.com/touchset-labs/sqltouch/pkg/catalog"

	// sqlite driver for the in-memory integration tests.
	_ "modernc.org/sqlite"
)

// sqliteQuery lists user tables; SQLite has no information_schema.
const sqliteQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

func TestBindings_EnumeratesTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("Users").
			AddRow("Orders"))

	got, err := New(db).Bindings()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Users", got[0].Entity.Name)
	assert.Equal(t, "Users", got[0].Table)
	assert.Nil(t, got[0].Entity.Type, "physical tables carry no Go type")
	assert.Equal(t, "Orders", got[1].Table)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBindings_QueryErrorSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT table_name").WillReturnError(assert.AnError)

	_, err = New(db).Bindings()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBindings_RowErrorSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"table_name"}).
		AddRow("Users").
		RowError(0, assert.AnError)
	mock.ExpectQuery("SELECT table_name").WillReturnRows(rows)

	_, err = New(db).Bindings()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBindings_NilConnection(t *testing.T) {
	_, err := New(nil).Bindings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}

func TestWithQuery_OverridesEnumeration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("events"))

	got, err := New(db, WithQuery(sqliteQuery)).BindingsContext(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "events", got[0].Table)
}

func TestCatalogKey_PerHandleByDefault(t *testing.T) {
	a, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	b, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, New(a).CatalogKey(), New(a).CatalogKey(), "one handle, one identity")
	assert.NotEqual(t, New(a).CatalogKey(), New(b).CatalogKey(), "distinct handles, distinct identities")
	assert.Equal(t, "primary", New(a, WithKey("primary")).CatalogKey())
}

// setupSQLite opens an in-memory database holding a small shop schema.
func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(context.Background(), `
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
		CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER);
		CREATE VIEW order_totals AS SELECT user_id, COUNT(*) AS n FROM orders GROUP BY user_id;
	`)
	require.NoError(t, err)

	return db
}

func TestBindings_SQLite(t *testing.T) {
	db := setupSQLite(t)

	got, err := New(db, WithQuery(sqliteQuery)).Bindings()
	require.NoError(t, err)
	require.Len(t, got, 2, "views are not base tables")

	assert.Equal(t, "orders", got[0].Table)
	assert.Equal(t, "users", got[1].Table)
}

func TestModel_WithAnalyzer(t *testing.T) {
	primary := setupSQLite(t)
	replica := setupSQLite(t)

	a := analyzer.New()
	m := New(primary, WithQuery(sqliteQuery), WithKey("primary"))

	got, err := a.AffectedEntities(m, "DELETE FROM orders WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "orders", got[0].Name)

	// A second model over another handle must not share the cached catalog.
	other := New(replica, WithQuery(sqliteQuery), WithKey("replica"))
	bindings, err := a.Catalog(other)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)

	var names []string
	for _, b := range bindings {
		names = append(names, b.Entity.Name)
	}
	assert.Equal(t, []string{"orders", "users"}, names)

	affected := catalog.Affected(bindings, []string{"users"})
	require.Len(t, affected, 1)
	assert.Equal(t, "users", affected[0].Name)
}
