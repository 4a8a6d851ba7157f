package styling

import (
	"fmt"
	"strings"
)

// Insertion describes one rule physically inserted into a sheet
type Insertion struct {
	Sheet     string
	Slot      string
	ClassName string
	CSS       string
	Index     int
}

// batch is the outcome of one InsertStyles call
type batch struct {
	classes  string
	inserted []Insertion
	hits     int
	stale    []string
}

// InsertStyles makes sure every rule in defs is present exactly once in
// target and returns the class names to apply, each prefixed by a space,
// in slot order. Class names already in cache are appended but not
// inserted again, even if their rule text differs.
//
// The cache entry for a slot is recorded before its rule is inserted. When
// insertion fails the error is returned at once; rules inserted earlier in
// the same call stay in place.
func InsertStyles(defs *Definitions, cache *RuleCache, rtl bool, target *Sheet) (string, error) {
	b, err := insertStyles(defs, cache, rtl, target)
	return b.classes, err
}

func insertStyles(defs *Definitions, cache *RuleCache, rtl bool, target *Sheet) (b batch, err error) {
	if cache == nil || target == nil {
		return b, ErrNoTarget
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	var classes strings.Builder
	defer func() { b.classes = classes.String() }()

	for _, slot := range defs.Slots() {
		def := slot.Definition
		className := def.Class(rtl)

		classes.WriteString(" ")
		classes.WriteString(className)

		ruleCSS := def.Rule(rtl)
		if entry, ok := cache.entries[className]; ok {
			b.hits++
			if entry.Rule != ruleCSS {
				b.stale = append(b.stale, className)
			}
			continue
		}

		if cache.full() {
			return b, fmt.Errorf("slot %q (%s): %w", slot.Key, className, ErrCacheFull)
		}

		cache.put(className, CacheEntry{Slot: slot.Key, Definition: def, Rule: ruleCSS})

		at, err := target.insertNext(ruleCSS)
		if err != nil {
			return b, fmt.Errorf("slot %q (%s): %w", slot.Key, className, err)
		}

		b.inserted = append(b.inserted, Insertion{
			Sheet:     target.Name(),
			Slot:      slot.Key,
			ClassName: className,
			CSS:       ruleCSS,
			Index:     at,
		})
	}

	return b, nil
}
