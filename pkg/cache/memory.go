// Package cache is a size-bounded in-memory store with TTL expiry. It holds
// rendered guest pages and generated avatars.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"glow/pkg/logger"
	"glow/pkg/utils"
)

const (
	DefaultMaxSize = 64 // MB
	DefaultTTL     = 5 * time.Minute

	// MaxItemSize keeps single large pages (inline base64 images) out of the heap.
	MaxItemSize = 2 << 20

	GCInterval      = 5 * time.Minute
	MonitorInterval = 30 * time.Minute
)

type Item struct {
	Data        []byte
	ContentType string
	ETag        string
	ExpiresAt   time.Time
	Size        int64
}

type Options struct {
	Enabled bool
	// MaxCapacity is in MB.
	MaxCapacity int
	TTL         time.Duration
}

type MemoryCache struct {
	sync.RWMutex
	items     map[string]Item
	totalSize int64
	maxSize   int64
	ttl       time.Duration
	enabled   bool
	group     singleflight.Group
	now       func() time.Time

	// gen moves on every Delete and DeletePrefix. A load that started
	// before an invalidation does not store its result.
	gen uint64
}

func New(opts Options) *MemoryCache {
	limitMB := int64(opts.MaxCapacity)
	if limitMB <= 0 {
		limitMB = DefaultMaxSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		maxSize: limitMB * 1024 * 1024,
		ttl:     ttl,
		enabled: opts.Enabled,
		now:     time.Now,
	}
	if c.enabled {
		c.items = make(map[string]Item)
		logger.LogInfo("Memory Cache Initialized: %d MB Limit, TTL: %s", limitMB, ttl)
	} else {
		logger.LogWarn("Memory Cache is DISABLED via config (Running in pass-through mode).")
	}
	return c
}

// Start runs the GC and monitor workers until ctx ends.
func (c *MemoryCache) Start(ctx context.Context) {
	if !c.enabled {
		return
	}
	go c.runEvery(ctx, GCInterval, c.gc)
	go c.runEvery(ctx, MonitorInterval, c.report)
}

func (c *MemoryCache) Enabled() bool { return c.enabled }

func (c *MemoryCache) Set(key string, it Item) {
	c.put(key, it, nil)
}

// put stores it. With gen set, the write is skipped when an invalidation
// happened since *gen was read.
func (c *MemoryCache) put(key string, it Item, gen *uint64) {
	if !c.enabled {
		return
	}
	size := int64(len(it.Data))
	if size > c.maxSize/2 || size > MaxItemSize {
		return
	}

	c.Lock()
	defer c.Unlock()

	if gen != nil && *gen != c.gen {
		logger.LogDebug("[CACHE] Dropped stale load for %s", key)
		return
	}
	if old, exists := c.items[key]; exists {
		c.totalSize -= old.Size
		delete(c.items, key)
	}
	if c.totalSize+size > c.maxSize {
		c.prune()
	}
	it.Size = size
	it.ExpiresAt = c.now().Add(c.ttl)
	c.items[key] = it
	c.totalSize += size
}

func (c *MemoryCache) Get(key string) (Item, bool) {
	if !c.enabled {
		return Item{}, false
	}
	c.RLock()
	defer c.RUnlock()

	it, found := c.items[key]
	if !found || c.now().After(it.ExpiresAt) {
		return Item{}, false
	}
	return it, true
}

// GetOrLoad returns the cached item or runs load once for all concurrent
// callers of the same key. Load errors are not cached, nor are results of a
// load overtaken by an invalidation.
func (c *MemoryCache) GetOrLoad(key string, load func() (Item, error)) (Item, error) {
	if it, ok := c.Get(key); ok {
		return it, nil
	}
	gen := c.generation()
	flight := key + "\x00" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		if it, ok := c.Get(key); ok {
			return it, nil
		}
		it, err := load()
		if err != nil {
			return Item{}, err
		}
		c.put(key, it, &gen)
		return it, nil
	})
	if err != nil {
		return Item{}, err
	}
	return v.(Item), nil
}

func (c *MemoryCache) generation() uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.gen
}

func (c *MemoryCache) Delete(key string) {
	if !c.enabled {
		return
	}
	c.Lock()
	defer c.Unlock()
	c.gen++
	if it, found := c.items[key]; found {
		delete(c.items, key)
		c.totalSize -= it.Size
	}
}

// DeletePrefix drops every key starting with prefix. Saving an invitation
// invalidates all of its personalized guest pages this way.
func (c *MemoryCache) DeletePrefix(prefix string) int {
	if !c.enabled {
		return 0
	}
	c.Lock()
	defer c.Unlock()
	c.gen++
	n := 0
	for k, it := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			c.totalSize -= it.Size
			n++
		}
	}
	return n
}

func (c *MemoryCache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.items)
}

// prune evicts soonest-to-expire items until usage is below 80%.
// Caller holds the write lock.
func (c *MemoryCache) prune() {
	if len(c.items) == 0 {
		return
	}
	targetSize := int64(float64(c.maxSize) * 0.80)

	type candidate struct {
		key       string
		expiresAt time.Time
		size      int64
	}
	candidates := make([]candidate, 0, len(c.items))
	for k, v := range c.items {
		candidates = append(candidates, candidate{k, v.ExpiresAt, v.Size})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].expiresAt.Before(candidates[j].expiresAt)
	})
	for _, cand := range candidates {
		if c.totalSize <= targetSize {
			break
		}
		delete(c.items, cand.key)
		c.totalSize -= cand.size
	}
}

func (c *MemoryCache) runEvery(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func (c *MemoryCache) gc() {
	c.Lock()
	now := c.now()
	removedCount := 0
	removedBytes := int64(0)
	for k, v := range c.items {
		if now.After(v.ExpiresAt) {
			delete(c.items, k)
			c.totalSize -= v.Size
			removedBytes += v.Size
			removedCount++
		}
	}
	c.Unlock()

	if removedCount > 0 {
		logger.LogDebug("[CACHE] GC: Cleaned %d items (%s freed)", removedCount, utils.FormatBytes(removedBytes))
	}
}

func (c *MemoryCache) report() {
	c.RLock()
	count, used, max := len(c.items), c.totalSize, c.maxSize
	c.RUnlock()
	if count == 0 {
		return
	}
	logger.LogInfo("[CACHE] %d items | Usage: %s / %s (%.2f%%)",
		count, utils.FormatBytes(used), utils.FormatBytes(max), float64(used)/float64(max)*100)
}
