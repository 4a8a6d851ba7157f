// Package cache stores compiled stylesheet artifacts on disk so builds can
// skip recompiling definition files whose content has not changed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const indexVersion = "1"

// Cache is an on-disk artifact store with a JSON index
type Cache struct {
	mu       sync.RWMutex
	dir      string
	index    *Index
	maxSize  int64
	maxAge   time.Duration
	strategy EvictionStrategy
	stats    Stats
	log      zerolog.Logger
	now      func() time.Time
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached artifact
type Entry struct {
	Key         string            `json:"key"`
	Hash        string            `json:"hash"`
	Path        string            `json:"path"`
	Size        int64             `json:"size"`
	Created     time.Time         `json:"created"`
	LastAccess  time.Time         `json:"last_access"`
	AccessCount int               `json:"access_count"`
	Sources     []string          `json:"sources,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// EvictionStrategy picks the entry removed when the cache is over size
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// LFU removes least frequently used entries
	LFU
	// FIFO removes oldest entries first
	FIFO
)

var strategyNames = map[EvictionStrategy]string{LRU: "lru", LFU: "lfu", FIFO: "fifo"}

func (s EvictionStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EvictionStrategy(%d)", int(s))
}

// ParseStrategy parses "lru", "lfu" or "fifo"; empty means LRU
func ParseStrategy(name string) (EvictionStrategy, error) {
	if name == "" {
		return LRU, nil
	}
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return LRU, fmt.Errorf("unknown eviction strategy %q", name)
}

// Config holds cache configuration
type Config struct {
	Dir      string        // default: $HOME/.cache/rulesheet
	MaxSize  int64         // bytes, 0 means unbounded
	MaxAge   time.Duration // 0 means entries never expire
	Strategy EvictionStrategy
	Logger   zerolog.Logger
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Dir:      filepath.Join(home, ".cache", "rulesheet"),
		MaxSize:  64 << 20,
		MaxAge:   7 * 24 * time.Hour,
		Strategy: LRU,
		Logger:   zerolog.Nop(),
	}
}

// New opens the cache in config.Dir, loading any existing index. An empty
// Dir uses the default directory.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}

	if err := os.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:      config.Dir,
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		strategy: config.Strategy,
		log:      config.Logger,
		now:      time.Now,
		index:    newIndex(),
	}

	if err := c.loadIndex(); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warn().Err(err).Str("dir", c.dir).Msg("cache index unreadable, starting fresh")
		c.index = newIndex()
	}

	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns a cached artifact
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if c.expired(entry) {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("cached artifact missing")
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = c.now()
	entry.AccessCount++
	c.stats.Hits++
	return data, true
}

// Lookup returns the index entry for key
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.index.Entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Put stores an artifact. sources and metadata are kept in the index.
func (c *Cache) Put(key string, data []byte, sources []string, metadata map[string]string) error {
	hash := hashBytes(data)
	size := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		existing.Sources = sources
		existing.Metadata = metadata
		return c.saveLocked()
	}

	c.removeLocked(key)
	c.evictLocked(size)

	path := filepath.Join(c.dir, "artifacts", sanitizeKey(key)+"_"+hash[:8])
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := c.now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Hash:       hash,
		Path:       path,
		Size:       size,
		Created:    now,
		LastAccess: now,
		Sources:    sources,
		Metadata:   metadata,
	}
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)

	return c.saveLocked()
}

// Delete removes an entry
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.removeLocked(key) {
		return nil
	}
	return c.saveLocked()
}

// InvalidateSource removes every entry built from path and returns how
// many were removed
func (c *Cache) InvalidateSource(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		for _, src := range entry.Sources {
			if src == path {
				c.removeLocked(key)
				count++
				break
			}
		}
	}
	if count > 0 {
		if err := c.saveLocked(); err != nil {
			c.log.Warn().Err(err).Msg("failed to save cache index")
		}
	}
	return count
}

// Prune removes expired entries
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		if c.expired(entry) {
			c.removeLocked(key)
			count++
		}
	}
	if count > 0 {
		if err := c.saveLocked(); err != nil {
			c.log.Warn().Err(err).Msg("failed to save cache index")
		}
	}
	return count
}

// Clear removes all entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	artifacts := filepath.Join(c.dir, "artifacts")
	if err := os.RemoveAll(artifacts); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(artifacts, 0755); err != nil {
		return err
	}

	c.index = newIndex()
	c.stats = Stats{}
	return c.saveLocked()
}

// Stats returns a snapshot of cache statistics
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Keys returns the cached keys in sorted order
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.index.Entries))
	for k := range c.index.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close saves the index
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// Key derives a cache key from inputs. Inputs are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:", len(in))
		h.Write([]byte(in))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// KeyFromFiles derives a cache key from file names and contents
func KeyFromFiles(files ...string) (string, error) {
	inputs := make([]string, 0, len(files)*2)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs = append(inputs, filepath.Base(file), string(data))
	}
	return Key(inputs...), nil
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion {
		return fmt.Errorf("index version %q, want %q", index.Version, indexVersion)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}

	c.index = &index
	for _, e := range index.Entries {
		c.stats.TotalSize += e.Size
	}
	c.stats.EntryCount = len(index.Entries)
	return nil
}

// saveLocked must be called with mu held
func (c *Cache) saveLocked() error {
	c.index.Updated = c.now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves a torn index
	path := filepath.Join(c.dir, "index.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *Cache) removeLocked(key string) bool {
	entry, ok := c.index.Entries[key]
	if !ok {
		return false
	}
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		c.log.Warn().Err(err).Str("path", entry.Path).Msg("failed to remove cache file")
	}
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
	return true
}

func (c *Cache) expired(e *Entry) bool {
	return c.maxAge > 0 && c.now().Sub(e.Created) > c.maxAge
}

// evictLocked frees room for needed bytes
func (c *Cache) evictLocked(needed int64) {
	if c.maxSize <= 0 {
		return
	}

	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		key := c.victim()
		if key == "" {
			return
		}
		c.log.Debug().Str("key", key).Msg("evicting cache entry")
		c.removeLocked(key)
		c.stats.Evictions++
	}
}

func (c *Cache) victim() string {
	var (
		key  string
		best *Entry
	)
	for k, e := range c.index.Entries {
		if best == nil || c.before(e, best) || (!c.before(best, e) && k < key) {
			key, best = k, e
		}
	}
	return key
}

// before reports whether a should be evicted ahead of b
func (c *Cache) before(a, b *Entry) bool {
	switch c.strategy {
	case LFU:
		return a.AccessCount < b.AccessCount
	case FIFO:
		return a.Created.Before(b.Created)
	default:
		return a.LastAccess.Before(b.LastAccess)
	}
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

var keyReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

func sanitizeKey(key string) string {
	s := keyReplacer.Replace(key)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
