package analyzer

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/touchset-labs/sqltouch/internal/testutil"
	"github.com/touchset-labs/sqltouch/pkg/catalog"
	"github.com/touchset-labs/sqltouch/pkg/scan"
)

type shopModel struct{}

func (shopModel) Bindings() ([]catalog.Binding, error) {
	return []catalog.Binding{
		{Entity: catalog.EntityType{Name: "User"}, Table: "Users"},
		{Entity: catalog.EntityType{Name: "Order"}, Table: "Orders"},
		{Entity: catalog.EntityType{Name: "Stats"}, Table: ""},
	}, nil
}

type countingModel struct{ calls *atomic.Int32 }

func (m countingModel) Bindings() ([]catalog.Binding, error) {
	m.calls.Add(1)
	return []catalog.Binding{{Entity: catalog.EntityType{Name: "Widget"}, Table: "Widgets"}}, nil
}

type otherModel struct{ calls *atomic.Int32 }

func (m otherModel) Bindings() ([]catalog.Binding, error) {
	m.calls.Add(1)
	return []catalog.Binding{{Entity: catalog.EntityType{Name: "Gadget"}, Table: "Gadgets"}}, nil
}

var errSchemaOffline = errors.New("schema context offline")

// flakyModel fails its first enumeration and succeeds afterwards.
type flakyModel struct{ calls *atomic.Int32 }

func (m flakyModel) Bindings() ([]catalog.Binding, error) {
	if m.calls.Add(1) == 1 {
		return nil, errSchemaOffline
	}
	return []catalog.Binding{{Entity: catalog.EntityType{Name: "Late"}, Table: "Late"}}, nil
}

func TestTableNames_MatchesDirectScan(t *testing.T) {
	a := New()
	text := "SELECT * FROM [dbo].[Users] u JOIN Orders o ON o.UserId = u.Id"
	want := scan.TableNames(text)
	for i := 0; i < 3; i++ {
		assert.Equal(t, want, a.TableNames(text))
	}
}

func TestTableNames_ScansOncePerDistinctText(t *testing.T) {
	var calls atomic.Int32
	a := New(WithTokenizer(func(text string) []string {
		calls.Add(1)
		return scan.TableNames(text)
	}))

	a.TableNames("SELECT * FROM Users")
	a.TableNames("SELECT * FROM Users")
	a.TableNames("SELECT * FROM Orders")
	assert.EqualValues(t, 2, calls.Load())

	a.TableNames("")
	a.TableNames("")
	assert.EqualValues(t, 3, calls.Load(), "empty text is cached like any other")
}

func TestTableNames_ConcurrentCallersScanOnce(t *testing.T) {
	var calls atomic.Int32
	a := New(WithTokenizer(func(text string) []string {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return scan.TableNames(text)
	}))

	const text = "SELECT * FROM Users u JOIN Orders o ON o.UserId = u.Id"
	want := scan.TableNames(text)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			if got := a.TableNames(text); !reflect.DeepEqual(got, want) {
				return fmt.Errorf("got %v, want %v", got, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, calls.Load())
}

func TestCatalog_ComputedOncePerModelType(t *testing.T) {
	a := New()
	var calls atomic.Int32

	first, err := a.Catalog(countingModel{&calls})
	require.NoError(t, err)
	second, err := a.Catalog(countingModel{&calls})
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load(), "instances of one type share one enumeration")
	assert.Equal(t, first, second)
}

func TestCatalog_IndependentPerModelType(t *testing.T) {
	a := New()
	var widgetCalls, gadgetCalls atomic.Int32

	widgets, err := a.Catalog(countingModel{&widgetCalls})
	require.NoError(t, err)
	gadgets, err := a.Catalog(otherModel{&gadgetCalls})
	require.NoError(t, err)

	assert.EqualValues(t, 1, widgetCalls.Load())
	assert.EqualValues(t, 1, gadgetCalls.Load())
	assert.NotEqual(t, widgets, gadgets)
}

func TestCatalog_KeyerScopesIdentity(t *testing.T) {
	a := New()
	var calls atomic.Int32
	m := countingModel{&calls}

	_, err := a.Catalog(catalog.Keyed("tenant-a", m))
	require.NoError(t, err)
	_, err = a.Catalog(catalog.Keyed("tenant-b", m))
	require.NoError(t, err)
	_, err = a.Catalog(catalog.Keyed("tenant-a", m))
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load(), "one enumeration per distinct key")
}

func TestCatalog_ConcurrentCallersEnumerateOnce(t *testing.T) {
	a := New()
	var calls atomic.Int32
	m := countingModel{&calls}

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := a.Catalog(m)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, calls.Load())
}

func TestCatalog_EnumerationFailureNotCached(t *testing.T) {
	a := New(WithLogger(testutil.NewTestLogger(t)))
	var calls atomic.Int32
	m := flakyModel{&calls}

	_, err := a.Catalog(m)
	require.ErrorIs(t, err, errSchemaOffline)

	bindings, err := a.Catalog(m)
	require.NoError(t, err, "the call after a failure re-attempts")
	assert.Len(t, bindings, 1)

	_, err = a.Catalog(m)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "success is cached")
}

func TestAffectedEntities(t *testing.T) {
	a := New(WithLogger(testutil.NewTestLogger(t)))

	got, err := a.AffectedEntities(shopModel{}, "SELECT * FROM Users u JOIN Orders o ON o.UserId = u.Id")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "User", got[0].Name)
	assert.Equal(t, "Order", got[1].Name)

	got, err = a.AffectedEntities(shopModel{}, "UPDATE Orders SET Total = 0")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Order", got[0].Name)

	got, err = a.AffectedEntities(shopModel{}, "SELECT 1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAffectedEntities_EnumerationErrorSurfaces(t *testing.T) {
	a := New()
	var calls atomic.Int32

	_, err := a.AffectedEntities(flakyModel{&calls}, "SELECT * FROM Late")
	require.ErrorIs(t, err, errSchemaOffline)
}

func TestVerify_CollisionServedUncached(t *testing.T) {
	logger, logs := testutil.NewCapturedLogger()
	var calls atomic.Int32
	a := New(WithVerify(true), WithLogger(logger), WithTokenizer(func(text string) []string {
		calls.Add(1)
		return scan.TableNames(text)
	}))

	// Seed an entry whose recorded text differs from the statement hashing
	// to it, standing in for an FNV collision.
	text := "SELECT * FROM Orders"
	cell := &stmtCell{}
	cell.once.Do(func() {
		cell.text = "SELECT * FROM Users"
		cell.tables = []string{"Users"}
	})
	a.stmts.Store(statementKey(text), cell)

	assert.Equal(t, []string{"Orders"}, a.TableNames(text))
	assert.Equal(t, []string{"Orders"}, a.TableNames(text))
	assert.EqualValues(t, 2, calls.Load(), "collisions are never cached")
	assert.Contains(t, logs.String(), "collision")
}

func TestNoVerify_TrustsHashKey(t *testing.T) {
	a := New()

	text := "SELECT * FROM Orders"
	cell := &stmtCell{}
	cell.once.Do(func() { cell.tables = []string{"Users"} })
	a.stmts.Store(statementKey(text), cell)

	assert.Equal(t, []string{"Users"}, a.TableNames(text))
}
