// Package cache inspects and resets the persistent format cache.
package cache

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/formatcache"
	"github.com/lepinkainen/shelfsync/internal/libby"
)

// InfoWithParams prints the cache location and what it currently holds.
func InfoWithParams() error {
	cache := formatcache.Load(config.CacheFile)

	kindleCapable := 0
	for _, formats := range cache.Entries() {
		for _, format := range formats {
			if format == libby.FormatKindle {
				kindleCapable++
				break
			}
		}
	}

	fmt.Printf("Format cache: %s\n", cache.Path())
	fmt.Printf("Cached titles: %d\n", cache.Len())
	fmt.Printf("Kindle-capable: %d\n", kindleCapable)
	return nil
}

// ClearWithParams deletes the cache file. The next run starts cold.
func ClearWithParams() error {
	unlock, err := formatcache.AcquireRunLock(config.CacheFile)
	if err != nil {
		return err
	}
	defer unlock()

	cache := formatcache.Load(config.CacheFile)
	entries := cache.Len()

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear format cache: %w", err)
	}

	slog.Info("Format cache cleared", "path", cache.Path(), "entries", entries)
	return nil
}
