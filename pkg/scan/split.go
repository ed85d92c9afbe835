package scan

import "strings"

// SplitStatements splits a script into individual statements on semicolons
// that fall outside single-quoted strings. Statements are trimmed and blank
// ones dropped. Like the rest of the package this is a lexical heuristic:
// dollar-quoted bodies, comments and dialect-specific escapes are not
// understood, and a semicolon inside them splits too early.
func SplitStatements(text string) []string {
	var stmts []string
	var buf strings.Builder
	inString := false

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
	}

	for _, r := range text {
		switch {
		case r == '\'':
			inString = !inString
			buf.WriteRune(r)
		case r == ';' && !inString:
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return stmts
}
