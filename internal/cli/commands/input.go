package commands

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/touchset-labs/sqltouch/pkg/scan"
)

// statementSource is one statement text together with where it came from.
type statementSource struct {
	Origin    string
	Statement string
}

// collectStatements gathers statement texts from positional args, --file
// flags and, failing both, piped stdin. Files are read concurrently but the
// result order is deterministic: args first, then files in flag order, each
// file's statements in script order.
func collectStatements(args, files []string) ([]statementSource, error) {
	var sources []statementSource
	for i, arg := range args {
		sources = append(sources, statementSource{
			Origin:    fmt.Sprintf("arg:%d", i+1),
			Statement: arg,
		})
	}

	if len(files) > 0 {
		perFile := make([][]statementSource, len(files))
		var g errgroup.Group
		for i, path := range files {
			g.Go(func() error {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				for _, stmt := range scan.SplitStatements(string(content)) {
					perFile[i] = append(perFile[i], statementSource{Origin: path, Statement: stmt})
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, batch := range perFile {
			sources = append(sources, batch...)
		}
	}

	if len(sources) == 0 && !isTerminal(os.Stdin) {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		for _, stmt := range scan.SplitStatements(string(content)) {
			sources = append(sources, statementSource{Origin: "stdin", Statement: stmt})
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no statements to analyze: pass SQL as arguments, use --file, or pipe a script")
	}

	return sources, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
