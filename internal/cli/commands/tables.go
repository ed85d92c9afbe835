package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	Files []string
}

// tableSet is one statement's extracted table names.
type tableSet struct {
	Source    string   `json:"source"`
	Statement string   `json:"statement"`
	Tables    []string `json:"tables"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &TablesOptions{}

	cmd := &cobra.Command{
		Use:   "tables [SQL...]",
		Short: "Extract the table names a statement touches",
		Long: `Extract the table names referenced by SQL statements.

Tokenizes each statement and reports the identifiers following FROM, JOIN,
INTO, and UPDATE, with quote decoration stripped and schema qualifiers
reduced to the bare table name. Repeated statements are answered from the
analyzer's cache.`,
		Example: `  # A single statement
  sqltouch tables "SELECT * FROM users u JOIN orders o ON o.user_id = u.id"

  # Whole scripts, read concurrently
  sqltouch tables -f schema.sql -f seed.sql

  # Piped input, rendered as JSON
  cat migration.sql | sqltouch tables --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Read statements from a SQL file (repeatable)")

	return cmd
}

func runTables(cmd *cobra.Command, args []string, opts *TablesOptions) error {
	cmdCtx := NewCommandContext(cmd)

	sources, err := collectStatements(args, opts.Files)
	if err != nil {
		return err
	}

	results := make([]tableSet, 0, len(sources))
	for _, src := range sources {
		results = append(results, tableSet{
			Source:    src.Origin,
			Statement: src.Statement,
			Tables:    cmdCtx.Analyzer.TableNames(src.Statement),
		})
	}

	if cmdCtx.Cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), results)
	}

	w := cmd.OutOrStdout()
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Source", "Statement", "Tables"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Source, snippet(r.Statement), strings.Join(r.Tables, ", ")})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d statements)\n", len(results))

	return nil
}
