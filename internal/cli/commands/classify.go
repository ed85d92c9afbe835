package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/touchset-labs/sqltouch/pkg/scan"
)

// ClassifyOptions holds options for the classify command.
type ClassifyOptions struct {
	Files []string
}

// classification is one statement's read/write verdict.
type classification struct {
	Source    string `json:"source"`
	Statement string `json:"statement"`
	Mutating  bool   `json:"mutating"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand() *cobra.Command {
	opts := &ClassifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [SQL...]",
		Short: "Classify statements as mutating or read-only",
		Long: `Classify SQL statements as mutating or read-only.

A statement is mutating when any of its lines starts with INSERT, UPDATE,
DELETE, or CREATE, case-insensitively. Everything else, including unknown
verbs, is treated as read-only.`,
		Example: `  # Classify a single statement
  sqltouch classify "UPDATE users SET active = 1"

  # Classify a migration script
  sqltouch classify -f migration.sql

  # JSON verdicts for scripting
  sqltouch classify -f migration.sql --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Read statements from a SQL file (repeatable)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, opts *ClassifyOptions) error {
	cmdCtx := NewCommandContext(cmd)

	sources, err := collectStatements(args, opts.Files)
	if err != nil {
		return err
	}

	results := make([]classification, 0, len(sources))
	mutating := 0
	for _, src := range sources {
		c := classification{
			Source:    src.Origin,
			Statement: src.Statement,
			Mutating:  scan.IsMutating(src.Statement),
		}
		if c.Mutating {
			mutating++
		}
		results = append(results, c)
	}

	if cmdCtx.Cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), results)
	}

	w := cmd.OutOrStdout()
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Source", "Statement", "Verdict"})
	for _, r := range results {
		verdict := "read-only"
		if r.Mutating {
			verdict = "mutating"
		}
		t.AppendRow(table.Row{r.Source, snippet(r.Statement), verdict})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d statements, %d mutating)\n", len(results), mutating)

	return nil
}
