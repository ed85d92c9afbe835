package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// EntitiesOptions holds options for the entities command.
type EntitiesOptions struct {
	Files []string
}

// entitySet is one statement's affected entity types.
type entitySet struct {
	Source    string   `json:"source"`
	Statement string   `json:"statement"`
	Entities  []string `json:"entities"`
}

// NewEntitiesCommand creates the entities command.
func NewEntitiesCommand() *cobra.Command {
	opts := &EntitiesOptions{}

	cmd := &cobra.Command{
		Use:   "entities [SQL...]",
		Short: "Resolve the entity types a statement touches",
		Long: `Resolve which catalog entities SQL statements touch.

Matches each statement's extracted table names against a catalog of
entity-to-table bindings and reports the affected entities in catalog
order. The catalog comes from the --catalog flag, the SQLTOUCH_CATALOG
environment variable, or the catalog key in sqltouch.yaml.`,
		Example: `  # Resolve against a catalog file
  sqltouch entities --catalog catalog.yaml "DELETE FROM orders WHERE id = 1"

  # Whole scripts
  sqltouch entities --catalog catalog.yaml -f migration.sql

  # JSON for scripting
  sqltouch entities --catalog catalog.yaml -f migration.sql -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntities(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Read statements from a SQL file (repeatable)")

	return cmd
}

func runEntities(cmd *cobra.Command, args []string, opts *EntitiesOptions) error {
	cmdCtx := NewCommandContext(cmd)

	if cmdCtx.Cfg.Catalog == "" {
		return fmt.Errorf("no catalog configured: set --catalog or the catalog config key")
	}
	model, err := loadCatalogFile(cmdCtx.Cfg.Catalog)
	if err != nil {
		return err
	}

	sources, err := collectStatements(args, opts.Files)
	if err != nil {
		return err
	}

	results := make([]entitySet, 0, len(sources))
	for _, src := range sources {
		affected, err := cmdCtx.Analyzer.AffectedEntities(model, src.Statement)
		if err != nil {
			return fmt.Errorf("failed to resolve entities: %w", err)
		}
		names := make([]string, 0, len(affected))
		for _, e := range affected {
			names = append(names, e.Name)
		}
		results = append(results, entitySet{
			Source:    src.Origin,
			Statement: src.Statement,
			Entities:  names,
		})
	}

	if cmdCtx.Cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), results)
	}

	w := cmd.OutOrStdout()
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Source", "Statement", "Entities"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Source, snippet(r.Statement), strings.Join(r.Entities, ", ")})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d statements)\n", len(results))

	return nil
}
