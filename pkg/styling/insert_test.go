package styling

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(key string, fields ...string) *Definitions {
	return NewDefinitions(Slot{Key: key, Definition: Tuple(fields...)})
}

func TestInsertStyles_Scenario(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")
	defs := single("size", "sz-sm", ".sz-sm{width:8px}")

	classes, err := InsertStyles(defs, cache, false, sheet)
	require.NoError(t, err)
	assert.Equal(t, " sz-sm", classes)

	entry, ok := cache.Get("sz-sm")
	require.True(t, ok)
	assert.Equal(t, "size", entry.Slot)
	assert.Equal(t, Tuple("sz-sm", ".sz-sm{width:8px}"), entry.Definition)
	assert.Equal(t, 1, cache.Len())

	classes, err = InsertStyles(defs, cache, false, sheet)
	require.NoError(t, err)
	assert.Equal(t, " sz-sm", classes)
	assert.Equal(t, []string{".sz-sm{width:8px}"}, sheet.Rules())
	assert.Equal(t, 1, sheet.Index())
}

func TestInsertStyles_RTLFallback(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")

	classes, err := InsertStyles(single("color", "a", ".a{color:red}"), cache, true, sheet)
	require.NoError(t, err)
	assert.Equal(t, " a", classes)
	assert.Equal(t, []string{".a{color:red}"}, sheet.Rules())
}

func TestInsertStyles_RTLOverride(t *testing.T) {
	defs := single("color", "a", ".a{color:red}", "b", ".b{color:blue}")

	rtlSheet := NewSheet("rtl")
	classes, err := InsertStyles(defs, NewRuleCache(), true, rtlSheet)
	require.NoError(t, err)
	assert.Equal(t, " b", classes)
	assert.Equal(t, []string{".b{color:blue}"}, rtlSheet.Rules())

	ltrSheet := NewSheet("ltr")
	classes, err = InsertStyles(defs, NewRuleCache(), false, ltrSheet)
	require.NoError(t, err)
	assert.Equal(t, " a", classes)
	assert.Equal(t, []string{".a{color:red}"}, ltrSheet.Rules())
}

func TestInsertStyles_RTLClassOnlyUsesLTRRule(t *testing.T) {
	sheet := NewSheet("test")
	classes, err := InsertStyles(single("c", "a", ".a{color:red}", "b"), NewRuleCache(), true, sheet)
	require.NoError(t, err)
	assert.Equal(t, " b", classes)
	assert.Equal(t, []string{".a{color:red}"}, sheet.Rules())
}

func TestInsertStyles_OrderPreserved(t *testing.T) {
	defs := &Definitions{}
	defs.Set("z", Tuple("cz", ".cz{top:0}"))
	defs.Set("x", Tuple("cx", ".cx{left:0}"))
	defs.Set("y", Tuple("cy", ".cy{right:0}"))

	sheet := NewSheet("test")
	classes, err := InsertStyles(defs, NewRuleCache(), false, sheet)
	require.NoError(t, err)
	assert.Equal(t, " cz cx cy", classes)
	assert.Equal(t, []string{".cz{top:0}", ".cx{left:0}", ".cy{right:0}"}, sheet.Rules())
}

func TestInsertStyles_MonotonicIndex(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")

	calls := []*Definitions{
		single("a", "c1", ".c1{color:red}"),
		single("a", "c1", ".c1{color:red}"),
		NewDefinitions(
			Slot{Key: "a", Definition: Tuple("c1", ".c1{color:red}")},
			Slot{Key: "b", Definition: Tuple("c2", ".c2{color:blue}")},
		),
		single("c", "c3", ".c3{color:green}"),
		single("c", "c3", ".c3{color:green}"),
	}

	last := sheet.Index()
	for _, defs := range calls {
		_, err := InsertStyles(defs, cache, false, sheet)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sheet.Index(), last)
		last = sheet.Index()
	}
	assert.Equal(t, 3, sheet.Index())
	assert.Equal(t, 3, sheet.Len())
}

func TestInsertStyles_NoRollbackOnFailure(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")
	defs := NewDefinitions(
		Slot{Key: "one", Definition: Tuple("ok", ".ok{color:red}")},
		Slot{Key: "two", Definition: Tuple("bad", ".bad{color:blue")},
		Slot{Key: "three", Definition: Tuple("never", ".never{color:green}")},
	)

	_, err := InsertStyles(defs, cache, false, sheet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRule))
	assert.Contains(t, err.Error(), `slot "two"`)

	assert.True(t, cache.Has("ok"))
	assert.False(t, cache.Has("never"))
	assert.Equal(t, []string{".ok{color:red}"}, sheet.Rules())
	assert.Equal(t, 1, sheet.Index())
}

func TestInsertStyles_FailedClassStaysCached(t *testing.T) {
	reg := NewRegistry()
	sheet := reg.DefaultSheet()

	_, err := reg.InsertStyles(single("c", "bad", ".bad{color:blue"), false, nil)
	require.ErrorIs(t, err, ErrMalformedRule)
	assert.True(t, reg.Cache().Has("bad"))
	assert.Equal(t, 0, sheet.Len())

	// a corrected rule for the same class is a stale hit, not an insert
	classes, err := reg.InsertStyles(single("c", "bad", ".bad{color:blue}"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, " bad", classes)
	assert.Equal(t, 0, sheet.Len())
	assert.Equal(t, int64(1), reg.Stats().Stale)
	assert.Equal(t, int64(0), reg.Stats().Inserted)
}

func TestInsertStyles_StaleRuleTextIgnored(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")

	_, err := InsertStyles(single("c", "a", ".a{color:red}"), cache, false, sheet)
	require.NoError(t, err)

	classes, err := InsertStyles(single("c", "a", ".a{color:blue}"), cache, false, sheet)
	require.NoError(t, err)
	assert.Equal(t, " a", classes)
	assert.Equal(t, []string{".a{color:red}"}, sheet.Rules())

	entry, _ := cache.Get("a")
	assert.Equal(t, ".a{color:red}", entry.Rule)
}

func TestInsertStyles_MalformedShape(t *testing.T) {
	sheet := NewSheet("test")

	classes, err := InsertStyles(single("empty"), NewRuleCache(), false, sheet)
	assert.Equal(t, " ", classes)
	assert.True(t, errors.Is(err, ErrMalformedRule))
	assert.Equal(t, 0, sheet.Len())
}

func TestInsertStyles_NilTarget(t *testing.T) {
	_, err := InsertStyles(single("a", "a", ".a{}"), nil, false, NewSheet("x"))
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = InsertStyles(single("a", "a", ".a{}"), NewRuleCache(), false, nil)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestInsertStyles_BoundedCache(t *testing.T) {
	cache := NewBoundedRuleCache(1)
	sheet := NewSheet("test")

	_, err := InsertStyles(single("a", "a", ".a{top:0}"), cache, false, sheet)
	require.NoError(t, err)

	classes, err := InsertStyles(single("b", "b", ".b{top:0}"), cache, false, sheet)
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.Equal(t, " b", classes)
	assert.Equal(t, 1, sheet.Len())

	// hits still resolve once the cache is full
	classes, err = InsertStyles(single("a", "a", ".a{top:0}"), cache, false, sheet)
	require.NoError(t, err)
	assert.Equal(t, " a", classes)
}

func TestInsertStyles_ConcurrentCallers(t *testing.T) {
	cache := NewRuleCache()
	sheet := NewSheet("test")
	defs := NewDefinitions(
		Slot{Key: "a", Definition: Tuple("a", ".a{color:red}")},
		Slot{Key: "b", Definition: Tuple("b", ".b{color:blue}")},
	)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			classes, err := InsertStyles(defs, cache, false, sheet)
			assert.NoError(t, err)
			assert.Equal(t, " a b", classes)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, sheet.Len())
	assert.Equal(t, 2, sheet.Index())
}
