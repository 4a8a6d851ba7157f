package styling

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultSheetName names the sheet used when no target is given
const DefaultSheetName = "default"

// Stats counts registry activity
type Stats struct {
	Calls    int64 `json:"calls"`
	Hits     int64 `json:"hits"`
	Inserted int64 `json:"inserted"`
	Stale    int64 `json:"stale"`
	Failures int64 `json:"failures"`
}

// Registry owns named sheets, one rule cache per sheet, and fans inserted
// rules out to subscribers
type Registry struct {
	mu          sync.RWMutex
	sheets      map[string]*Sheet
	caches      map[*Sheet]*RuleCache
	shared      *RuleCache
	maxEntries  int
	closed      bool
	defaultName string
	log         zerolog.Logger

	subMu  sync.RWMutex
	subs   map[int]func(Insertion)
	nextID int

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithMaxEntries bounds each sheet's cache
func WithMaxEntries(n int) Option {
	return func(r *Registry) { r.maxEntries = n }
}

// WithCache shares c between every sheet of the registry, so a class
// inserted into one sheet is not inserted into another
func WithCache(c *RuleCache) Option {
	return func(r *Registry) { r.shared = c }
}

// WithDefaultSheet renames the default sheet
func WithDefaultSheet(name string) Option {
	return func(r *Registry) { r.defaultName = name }
}

// NewRegistry creates a registry with an empty default sheet
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sheets:      make(map[string]*Sheet),
		caches:      make(map[*Sheet]*RuleCache),
		defaultName: DefaultSheetName,
		log:         zerolog.Nop(),
		subs:        make(map[int]func(Insertion)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sheets[r.defaultName] = NewSheet(r.defaultName)
	return r
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// Reset disposes the process-wide registry (useful for testing)
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil {
		defaultRegistry.Close()
	}
	defaultRegistry = nil
}

// Cache returns the rule cache of the default sheet
func (r *Registry) Cache() *RuleCache {
	return r.CacheFor(r.DefaultSheet())
}

// CacheFor returns the rule cache InsertStyles uses for target, creating
// it on first use
func (r *Registry) CacheFor(target *Sheet) *RuleCache {
	if r.shared != nil {
		return r.shared
	}

	r.mu.RLock()
	c, ok := r.caches[target]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[target]; ok {
		return c
	}
	c = NewBoundedRuleCache(r.maxEntries)
	r.caches[target] = c
	return c
}

// CachedClasses counts the class names cached across all sheets
func (r *Registry) CachedClasses() int {
	if r.shared != nil {
		return r.shared.Len()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.caches {
		n += c.Len()
	}
	return n
}

// DefaultSheet returns the sheet used when no target is given
func (r *Registry) DefaultSheet() *Sheet {
	return r.Sheet(r.defaultName)
}

// Sheet returns the named sheet, creating it if needed. Sheets created
// after Close are already closed.
func (r *Registry) Sheet(name string) *Sheet {
	if name == "" {
		name = r.defaultName
	}

	r.mu.RLock()
	s, ok := r.sheets[name]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sheets[name]; ok {
		return s
	}
	s = NewSheet(name)
	if r.closed {
		s.Close()
	}
	r.sheets[name] = s
	return s
}

// Lookup returns the named sheet without creating it. An empty name
// looks up the default sheet.
func (r *Registry) Lookup(name string) (*Sheet, bool) {
	if name == "" {
		name = r.defaultName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sheets[name]
	return s, ok
}

// Sheets returns the sheet names in sorted order
func (r *Registry) Sheets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sheets))
	for name := range r.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InsertStyles runs InsertStyles against the target's cache. A nil target
// writes to the default sheet.
func (r *Registry) InsertStyles(defs *Definitions, rtl bool, target *Sheet) (string, error) {
	if target == nil {
		target = r.DefaultSheet()
	}
	return r.InsertStylesWithCache(defs, r.CacheFor(target), rtl, target)
}

// InsertStylesWithCache runs InsertStyles with an explicit cache, for
// callers that keep an isolated style namespace per rendering root
func (r *Registry) InsertStylesWithCache(defs *Definitions, cache *RuleCache, rtl bool, target *Sheet) (string, error) {
	if target == nil {
		target = r.DefaultSheet()
	}

	b, err := insertStyles(defs, cache, rtl, target)
	r.record(b, err)

	for _, ins := range b.inserted {
		r.log.Debug().
			Str("sheet", ins.Sheet).
			Str("slot", ins.Slot).
			Str("class", ins.ClassName).
			Int("index", ins.Index).
			Msg("rule inserted")
	}
	for _, class := range b.stale {
		r.log.Debug().Str("class", class).Msg("cached class name has different rule text, keeping first")
	}
	if err != nil {
		r.log.Warn().Err(err).Str("sheet", target.Name()).Bool("rtl", rtl).Msg("insert styles failed")
	}

	// Subscribers run without locks held so they may insert styles themselves
	r.notify(b.inserted)

	return b.classes, err
}

// Subscribe registers fn for every inserted rule. The returned function
// removes the subscription.
func (r *Registry) Subscribe(fn func(Insertion)) func() {
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Registry) notify(inserted []Insertion) {
	if len(inserted) == 0 {
		return
	}

	r.subMu.RLock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Insertion), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	r.subMu.RUnlock()

	for _, ins := range inserted {
		for _, fn := range fns {
			fn(ins)
		}
	}
}

func (r *Registry) record(b batch, err error) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	r.stats.Calls++
	r.stats.Hits += int64(b.hits)
	r.stats.Inserted += int64(len(b.inserted))
	r.stats.Stale += int64(len(b.stale))
	if err != nil {
		r.stats.Failures++
	}
}

// Stats returns a snapshot of registry counters
func (r *Registry) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.stats
}

// Close disposes every sheet. Later inserts fail with ErrSheetClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, s := range r.sheets {
		s.Close()
	}
	return nil
}

// AllCSS returns the CSS of every sheet, default sheet first
func (r *Registry) AllCSS() string {
	var b strings.Builder
	b.WriteString(r.DefaultSheet().CSS())
	for _, name := range r.Sheets() {
		if name == r.defaultName {
			continue
		}
		if s, ok := r.Lookup(name); ok {
			b.WriteString(s.CSS())
		}
	}
	return b.String()
}
