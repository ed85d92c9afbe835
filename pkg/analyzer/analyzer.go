// Package analyzer is the memoizing front door for statement analysis:
// table-name extraction cached per distinct statement text, schema catalogs
// cached per model identity, and the intersection of the two as the set of
// entity types a statement touches.
//
// Both caches are append-only for the life of the Analyzer. Nothing is
// evicted and no published entry is ever mutated, so a process that sees an
// unbounded stream of distinct statement texts must bound growth itself,
// for example by cycling the Analyzer.
package analyzer

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"reflect"
	"sync"

	"github.com/touchset-labs/sqltouch/pkg/catalog"
	"github.com/touchset-labs/sqltouch/pkg/scan"
)

// Analyzer memoizes statement scans and schema catalogs. The zero value is
// not usable; construct with New. All methods are safe for concurrent use.
type Analyzer struct {
	logger   *slog.Logger
	verify   bool
	tokenize func(string) []string

	stmts    sync.Map // statement hash -> *stmtCell
	catalogs sync.Map // model identity -> *catalogCell
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for cache events. The default discards
// everything.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithVerify keeps the original statement text alongside each cache entry
// and, when a hash hit carries different text, logs a warning and re-scans
// that statement without caching it. Off by default: the 64-bit content
// hash is trusted, and a collision silently reuses the colliding
// statement's table set.
func WithVerify(verify bool) Option {
	return func(a *Analyzer) { a.verify = verify }
}

// WithTokenizer replaces the table-name extractor. The default is
// scan.TableNames.
func WithTokenizer(tokenize func(string) []string) Option {
	return func(a *Analyzer) {
		if tokenize != nil {
			a.tokenize = tokenize
		}
	}
}

// New returns an Analyzer with empty caches.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:   slog.New(slog.DiscardHandler),
		tokenize: scan.TableNames,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// stmtCell is the one-shot computation slot for a single statement hash.
type stmtCell struct {
	once   sync.Once
	text   string // original text, kept only when verify is on
	tables []string
}

// catalogCell is the one-shot computation slot for a single model identity.
type catalogCell struct {
	once     sync.Once
	bindings []catalog.Binding
	err      error
}

// TableNames returns the table-name set of text, extracting it at most once
// per distinct statement even under concurrent callers. The returned slice
// is shared between all callers for the life of the Analyzer and must not
// be modified.
func (a *Analyzer) TableNames(text string) []string {
	key := statementKey(text)
	v, _ := a.stmts.LoadOrStore(key, &stmtCell{})
	cell := v.(*stmtCell)
	cell.once.Do(func() {
		cell.tables = a.tokenize(text)
		if a.verify {
			cell.text = text
		}
		a.logger.Debug("statement scanned", "key", key, "tables", len(cell.tables))
	})
	if a.verify && cell.text != text {
		a.logger.Warn("statement hash collision, serving uncached scan", "key", key)
		return a.tokenize(text)
	}
	return cell.tables
}

// Catalog returns m's bindings, enumerating them at most once per model
// identity. A failed enumeration is not cached: the error surfaces to every
// caller that joined the attempt, and the next call starts a fresh one.
func (a *Analyzer) Catalog(m catalog.Model) ([]catalog.Binding, error) {
	key := modelKey(m)
	v, _ := a.catalogs.LoadOrStore(key, &catalogCell{})
	cell := v.(*catalogCell)
	cell.once.Do(func() {
		cell.bindings, cell.err = m.Bindings()
		if cell.err == nil {
			a.logger.Debug("catalog cached", "model", key, "bindings", len(cell.bindings))
		}
	})
	if cell.err != nil {
		a.catalogs.CompareAndDelete(key, cell)
		return nil, cell.err
	}
	return cell.bindings, nil
}

// AffectedEntities returns the entity types of m whose tables are referenced
// by text, in catalog order. Both the catalog and the statement scan are
// served from cache after their first use. The only error source is catalog
// enumeration.
func (a *Analyzer) AffectedEntities(m catalog.Model, text string) ([]catalog.EntityType, error) {
	bindings, err := a.Catalog(m)
	if err != nil {
		return nil, err
	}
	return catalog.Affected(bindings, a.TableNames(text)), nil
}

// statementKey fingerprints statement text with FNV-1a 64, rendered as
// fixed-width hex so long statements cost the same to store and compare as
// short ones.
func statementKey(text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}

// modelKey derives the cache identity of a model: its CatalogKey when it
// implements catalog.Keyer, its dynamic type otherwise. reflect.Type and
// string are both comparable and cannot collide with each other.
func modelKey(m catalog.Model) any {
	if k, ok := m.(catalog.Keyer); ok {
		return k.CatalogKey()
	}
	return reflect.TypeOf(m)
}
