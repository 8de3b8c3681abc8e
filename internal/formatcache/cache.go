// Package formatcache persists per-title catalog format lists between runs.
// Format lookups are one extra API call per title and the answers almost
// never change, so a small JSON file beside the config saves most of them.
package formatcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type cacheFile struct {
	Entries map[string][]string `json:"entries"`
}

// Cache maps catalog title ids to the format ids the library offers them in.
type Cache struct {
	path    string
	entries map[string][]string
	dirty   bool
}

// Load reads the cache at path. Read and decode errors produce an empty
// cache: a cold start only costs extra lookups, never correctness.
func Load(path string) *Cache {
	cache := &Cache{path: path, entries: make(map[string][]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Could not read format cache, starting cold", "path", path, "error", err)
		}
		return cache
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("Format cache is corrupt, starting cold", "path", path, "error", err)
		return cache
	}
	if file.Entries != nil {
		cache.entries = file.Entries
	}

	return cache
}

// Get returns the cached formats for a title id.
func (c *Cache) Get(titleID string) ([]string, bool) {
	formats, ok := c.entries[titleID]
	return formats, ok
}

// Put stores the formats for a title id and marks the cache for saving.
func (c *Cache) Put(titleID string, formats []string) {
	c.entries[titleID] = formats
	c.dirty = true
}

// Misses returns the subset of ids that have no cached entry, in input order.
func (c *Cache) Misses(titleIDs []string) []string {
	var misses []string
	for _, id := range titleIDs {
		if _, ok := c.entries[id]; !ok {
			misses = append(misses, id)
		}
	}
	return misses
}

// Len returns the number of cached titles.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Path returns the file the cache was loaded from.
func (c *Cache) Path() string {
	return c.path
}

// Entries returns a copy of the cached mapping.
func (c *Cache) Entries() map[string][]string {
	entries := make(map[string][]string, len(c.entries))
	for id, formats := range c.entries {
		entries[id] = append([]string(nil), formats...)
	}
	return entries
}

// Save writes the cache to disk if anything was added since loading.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(cacheFile{Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal format cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write format cache: %w", err)
	}

	c.dirty = false
	return nil
}

// Clear removes the cache file and empties the in-memory entries.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove format cache: %w", err)
	}
	c.entries = make(map[string][]string)
	c.dirty = false
	return nil
}
