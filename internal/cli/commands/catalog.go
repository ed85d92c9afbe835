package commands

import (
	"database/sql"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/touchset-labs/sqltouch/pkg/catalog"
	"github.com/touchset-labs/sqltouch/pkg/catalogs/dbcatalog"

	// Database drivers for --dsn enumeration. The duckdb driver is linked
	// from catalog_duckdb.go, as it is only available in cgo builds.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Enumeration defaults for drivers where dbcatalog.DefaultQuery misses:
// SQLite has no information_schema, and DuckDB exposes every attached
// catalog through it, so enumeration is pinned to the main schema.
const (
	sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	duckdbTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' AND table_type = 'BASE TABLE' ORDER BY table_name`
)

// CatalogOptions holds options for the catalog command.
type CatalogOptions struct {
	DSN    string
	Driver string
	Query  string
}

// bindingRow is one catalog binding in command output.
type bindingRow struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	opts := &CatalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the entity-to-table bindings of a catalog",
		Long: `Show the entity-to-table bindings of a catalog.

The catalog comes from a YAML file (--catalog) or from a live database
(--dsn with --driver), where each enumerated table becomes an entity bound
to itself. Live enumeration uses information_schema by default; the sqlite
driver queries sqlite_master instead, and the duckdb driver is scoped to
the main schema.`,
		Example: `  # Bindings declared in a file
  sqltouch catalog --catalog catalog.yaml

  # Tables of a SQLite database
  sqltouch catalog --dsn app.db

  # Tables of a DuckDB database
  sqltouch catalog --driver duckdb --dsn warehouse.db

  # Tables of a PostgreSQL database
  sqltouch catalog --driver pgx --dsn "postgres://localhost:5432/app"

  # Custom enumeration query
  sqltouch catalog --dsn app.db --query "SELECT name FROM sqlite_master WHERE type = 'view'"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "Connection string for live table enumeration")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "Database driver for --dsn (sqlite, duckdb, pgx)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Override the table enumeration query")

	return cmd
}

func runCatalog(cmd *cobra.Command, opts *CatalogOptions) error {
	cmdCtx := NewCommandContext(cmd)

	model, cleanup, err := resolveCatalogModel(cmdCtx.Cfg.Catalog, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	bindings, err := cmdCtx.Analyzer.Catalog(model)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	rows := make([]bindingRow, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, bindingRow{Entity: b.Entity.Name, Table: b.Table})
	}

	if cmdCtx.Cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), rows)
	}

	w := cmd.OutOrStdout()
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Entity", "Table"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Entity, r.Table})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d bindings)\n", len(rows))

	return nil
}

// resolveCatalogModel picks the catalog source: a live database when --dsn
// is given, the configured YAML file otherwise. The returned cleanup closes
// the database handle, if any.
func resolveCatalogModel(catalogFile string, opts *CatalogOptions) (catalog.Model, func(), error) {
	noop := func() {}

	if opts.DSN != "" {
		db, err := sql.Open(opts.Driver, opts.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open database: %w", err)
		}

		query := opts.Query
		if query == "" {
			query = defaultEnumerationQuery(opts.Driver)
		}

		model := dbcatalog.New(db,
			dbcatalog.WithQuery(query),
			dbcatalog.WithKey(opts.Driver+":"+opts.DSN),
		)
		return model, func() { _ = db.Close() }, nil
	}

	if catalogFile != "" {
		model, err := loadCatalogFile(catalogFile)
		return model, noop, err
	}

	return nil, noop, fmt.Errorf("no catalog source: set --catalog or --dsn")
}

// defaultEnumerationQuery returns the driver-specific table listing, or ""
// to let dbcatalog fall back on its information_schema default.
func defaultEnumerationQuery(driver string) string {
	switch driver {
	case "sqlite":
		return sqliteTablesQuery
	case "duckdb":
		return duckdbTablesQuery
	default:
		return ""
	}
}
