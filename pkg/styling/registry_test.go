package styling

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DefaultSheet(t *testing.T) {
	reg := NewRegistry()

	classes, err := reg.InsertStyles(single("size", "sz-sm", ".sz-sm{width:8px}"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, " sz-sm", classes)
	assert.Equal(t, 1, reg.DefaultSheet().Len())
	assert.Equal(t, []string{DefaultSheetName}, reg.Sheets())
}

func TestRegistry_TargetsHaveSeparateIndexes(t *testing.T) {
	reg := NewRegistry()
	a := reg.Sheet("a")
	b := reg.Sheet("b")

	_, err := reg.InsertStylesWithCache(single("c", "one", ".one{top:0}"), NewRuleCache(), false, a)
	require.NoError(t, err)
	_, err = reg.InsertStylesWithCache(single("c", "one", ".one{top:0}"), NewRuleCache(), false, b)
	require.NoError(t, err)
	_, err = reg.InsertStylesWithCache(single("c", "two", ".two{top:0}"), NewRuleCache(), false, b)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Index())
	assert.Equal(t, 2, b.Index())
	assert.Same(t, a, reg.Sheet("a"))
	assert.Equal(t, []string{"a", "b", DefaultSheetName}, reg.Sheets())
}

func TestRegistry_EachSheetGetsItsRules(t *testing.T) {
	reg := NewRegistry()
	embedded := reg.Sheet("embedded")
	defs := single("size", "sz-sm", ".sz-sm{width:8px}")

	classes, err := reg.InsertStyles(defs, false, nil)
	require.NoError(t, err)
	assert.Equal(t, " sz-sm", classes)

	classes, err = reg.InsertStyles(defs, false, embedded)
	require.NoError(t, err)
	assert.Equal(t, " sz-sm", classes)

	assert.Equal(t, []string{".sz-sm{width:8px}"}, reg.DefaultSheet().Rules())
	assert.Equal(t, []string{".sz-sm{width:8px}"}, embedded.Rules())
	assert.True(t, reg.CacheFor(embedded).Has("sz-sm"))
	assert.NotSame(t, reg.Cache(), reg.CacheFor(embedded))
	assert.Equal(t, 2, reg.CachedClasses())

	// second call per sheet is a hit
	_, err = reg.InsertStyles(defs, false, embedded)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded.Len())
}

func TestRegistry_WithCacheSharesNamespace(t *testing.T) {
	shared := NewRuleCache()
	reg := NewRegistry(WithCache(shared))
	a := reg.Sheet("a")
	b := reg.Sheet("b")
	defs := single("c", "one", ".one{top:0}")

	_, err := reg.InsertStyles(defs, false, a)
	require.NoError(t, err)
	_, err = reg.InsertStyles(defs, false, b)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
	assert.Same(t, shared, reg.CacheFor(b))
	assert.Equal(t, 1, reg.CachedClasses())
}

func TestRegistry_MaxEntriesPerSheet(t *testing.T) {
	reg := NewRegistry(WithMaxEntries(1))

	_, err := reg.InsertStyles(single("c", "a", ".a{top:0}"), false, nil)
	require.NoError(t, err)
	_, err = reg.InsertStyles(single("c", "b", ".b{top:0}"), false, nil)
	assert.ErrorIs(t, err, ErrCacheFull)

	_, err = reg.InsertStyles(single("c", "b", ".b{top:0}"), false, reg.Sheet("other"))
	assert.NoError(t, err)
}

func TestRegistry_SubscribeAndReentrancy(t *testing.T) {
	reg := NewRegistry()

	var seen []Insertion
	unsubscribe := reg.Subscribe(func(ins Insertion) {
		seen = append(seen, ins)
		if ins.ClassName == "parent" {
			// nested resolution for a child component
			_, err := reg.InsertStyles(single("child", "child", ".child{top:0}"), false, nil)
			assert.NoError(t, err)
		}
	})

	_, err := reg.InsertStyles(single("root", "parent", ".parent{top:0}"), false, nil)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "parent", seen[0].ClassName)
	assert.Equal(t, 0, seen[0].Index)
	assert.Equal(t, "child", seen[1].ClassName)
	assert.Equal(t, 1, seen[1].Index)

	unsubscribe()
	_, err = reg.InsertStyles(single("x", "x", ".x{top:0}"), false, nil)
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestRegistry_Stats(t *testing.T) {
	reg := NewRegistry()
	defs := single("c", "a", ".a{top:0}")

	_, _ = reg.InsertStyles(defs, false, nil)
	_, _ = reg.InsertStyles(defs, false, nil)
	_, _ = reg.InsertStyles(single("c", "a", ".a{top:1px}"), false, nil)
	_, _ = reg.InsertStyles(single("bad", "b", "nope"), false, nil)

	stats := reg.Stats()
	assert.Equal(t, int64(4), stats.Calls)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Inserted)
	assert.Equal(t, int64(1), stats.Stale)
	assert.Equal(t, int64(1), stats.Failures)
}

func TestRegistry_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	_, err := reg.InsertStyles(single("c", "a", ".a{top:0}"), false, nil)
	require.NoError(t, err)
	_, err = reg.InsertStyles(single("c", "b", "nope"), false, nil)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"rule inserted"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestRegistry_Close(t *testing.T) {
	reg := NewRegistry(WithMaxEntries(10))
	require.NoError(t, reg.Close())

	_, err := reg.InsertStyles(single("c", "a", ".a{top:0}"), false, nil)
	assert.ErrorIs(t, err, ErrSheetClosed)

	late := reg.Sheet("late")
	assert.True(t, late.Closed())
	_, err = reg.InsertStyles(single("c", "b", ".b{top:0}"), false, late)
	assert.ErrorIs(t, err, ErrSheetClosed)
	assert.Equal(t, 0, late.Len())
}

func TestRegistry_AllCSS(t *testing.T) {
	reg := NewRegistry(WithDefaultSheet("main"))
	_, err := reg.InsertStyles(single("c", "a", ".a{top:0}"), false, nil)
	require.NoError(t, err)
	_, err = reg.InsertStyles(single("c", "b", ".b{top:0}"), false, reg.Sheet("extra"))
	require.NoError(t, err)

	css := reg.AllCSS()
	assert.True(t, strings.Index(css, ".a{") < strings.Index(css, ".b{"))
}

func TestDefaultRegistry(t *testing.T) {
	Reset()
	defer Reset()

	reg := Default()
	assert.Same(t, reg, Default())

	_, err := reg.InsertStyles(single("c", "a", ".a{top:0}"), false, nil)
	require.NoError(t, err)

	Reset()
	assert.NotSame(t, reg, Default())
	assert.Equal(t, 0, Default().DefaultSheet().Len())
}
