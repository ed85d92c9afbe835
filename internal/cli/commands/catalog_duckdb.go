//go:build cgo

package commands

import (
	// Database driver for --dsn enumeration. go-duckdb wraps the native
	// DuckDB library and does not compile with CGO_ENABLED=0.
	_ "github.com/marcboeker/go-duckdb"
)
