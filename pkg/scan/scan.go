// Package scan provides lightweight lexical analysis of SQL statement text:
// classifying statements as mutating or read-only and extracting the set of
// table names a statement references.
//
// scan is deliberately not a SQL parser. It builds no syntax tree, validates
// no grammar, and understands no dialect beyond a handful of keyword markers.
// False positives are acceptable to its callers (cache layers that treat
// over-invalidation as safe), so the scan favors speed and predictability
// over precision.
package scan

import (
	"sort"
	"strings"
)

// Keyword markers that introduce a table reference. The token following a
// marker is taken as a candidate table name.
var tableMarkers = map[string]struct{}{
	"from":   {},
	"join":   {},
	"into":   {},
	"update": {},
}

// Line prefixes that identify a mutating statement. The trailing space is
// part of the match: "UPDATE" alone names nothing.
var mutatingPrefixes = []string{"insert ", "update ", "delete ", "create "}

// identDecoration strips bracket and quote characters from identifiers
// ([dbo].[Users], "Products", `orders`).
var identDecoration = strings.NewReplacer("[", "", "]", "", "'", "", "`", "", `"`, "")

// StripQuotes removes bracket and quote decoration from an identifier:
// every [, ], ', backtick and " character, wherever it appears.
func StripQuotes(ident string) string {
	return identDecoration.Replace(ident)
}

// IsMutating reports whether text contains a data- or schema-changing
// statement. A statement is mutating when any of its lines, after trimming,
// begins with insert, update, delete or create (case-insensitive). Mid-line
// occurrences never match, so a column named UpdateLog does not classify a
// SELECT as mutating. Malformed input is never an error; it is read-only.
func IsMutating(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range mutatingPrefixes {
			if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
				return true
			}
		}
	}
	return false
}

// TableNames extracts the set of table names referenced by a statement.
//
// The scan is lexical: the text is split into whitespace-delimited tokens and
// the token following each FROM, JOIN, INTO or UPDATE keyword is taken as a
// candidate table reference. Qualified candidates keep the dot-delimited
// segment after the first dot (schema.table), and bracket/quote decoration is
// stripped. A consumed candidate is never re-read as a keyword marker.
//
// The result is deduplicated (case-sensitive) and sorted lexicographically
// for deterministic iteration; order carries no meaning. Malformed or
// non-SQL text yields an empty or partial set, never an error.
func TableNames(text string) []string {
	tokens := strings.Fields(text)
	set := make(map[string]struct{})
	for i := 0; i < len(tokens); i++ {
		if _, ok := tableMarkers[strings.ToLower(tokens[i])]; !ok {
			continue
		}
		if i+1 == len(tokens) {
			break // trailing marker, nothing to name
		}
		i++
		if name := tableName(tokens[i]); name != "" {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tableName reduces a candidate token to a bare table name. A qualified name
// keeps its second segment: "dbo.Users" yields "Users", and a longer chain
// like "srv.dbo.Users" still yields the second segment, "dbo" — schema.table
// is the only qualification modeled. Returns "" when nothing usable remains
// after stripping.
func tableName(candidate string) string {
	parts := strings.SplitN(candidate, ".", 3)
	name := parts[0]
	if len(parts) > 1 {
		name = parts[1]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return identDecoration.Replace(name)
}
