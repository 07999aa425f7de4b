package utils

import (
	"os"
	"sync"
	"time"
)

// CacheItem represents a cached value with the file metadata it was built from
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// Cache holds values derived from files and drops them when the file changes
type Cache[K comparable, V any] struct {
	items map[K]*CacheItem[V]
	mutex sync.RWMutex
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*CacheItem[V]),
	}
}

// Get retrieves an item from the cache without checking its file
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, exists := c.items[key]; exists {
		return item.Value, true
	}

	var zero V
	return zero, false
}

// GetWithFileValidation retrieves an item if filePath is unchanged since
// it was stored. A changed or unreadable file evicts the item.
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()

	if !exists {
		var zero V
		return zero, false
	}

	if stat, err := os.Stat(filePath); err == nil {
		if stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
			return item.Value, true
		}
	}

	c.Delete(key)

	var zero V
	return zero, false
}

// SetWithFileInfo stores an item together with the metadata of filePath
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	c.set(key, value, stat)
	return nil
}

func (c *Cache[K, V]) set(key K, value V, stat os.FileInfo) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheItem[V]{
		Value:   value,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}
}

// Load returns the cached value for key while filePath is unchanged, and
// otherwise builds, stores and returns a fresh one. The boolean reports
// whether build ran. The stored metadata is read before build, so a file
// written during the build is built again on the next call.
func (c *Cache[K, V]) Load(key K, filePath string, build func() (V, error)) (V, bool, error) {
	var zero V
	stat, err := os.Stat(filePath)
	if err != nil {
		c.Delete(key)
		return zero, false, err
	}

	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()
	if exists && stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
		return item.Value, false, nil
	}

	value, err := build()
	if err != nil {
		return zero, false, err
	}
	c.set(key, value, stat)
	return value, true, nil
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
