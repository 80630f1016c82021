// Package cache provides a small TTL response cache for the read-heavy
// statistics endpoints.
package cache

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadlabs/bibliometer/internal/monitoring"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

func (i *item) expired() bool {
	return time.Now().After(i.expiresAt)
}

// Cache is a thread-safe in-memory cache with TTL.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*item
	ttl   time.Duration
}

// NewCache creates a cache with the given TTL and starts its cleanup loop.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*item),
		ttl:   ttl,
	}
	go c.cleanup()
	return c
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, it := range c.items {
			if it.expired() {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Get retrieves a cached value.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || it.expired() {
		return nil, false
	}
	return it.data, true
}

// Set stores a value under key.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &item{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// InvalidatePrefix drops every entry whose key starts with prefix. Called
// after writes so stats never serve stale figures for long.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// cachedWriter buffers the response body so it can be stored on the way out.
type cachedWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

// Middleware caches successful JSON responses of the wrapped route, keyed by
// path and the key extracted from the request (typically the user ID).
func (c *Cache) Middleware(keyFn func(*gin.Context) string, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.Request.URL.Path + ":" + keyFn(ctx)

		if data, ok := c.Get(key); ok {
			metrics.IncrementCacheHit()
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", data)
			ctx.Abort()
			return
		}
		metrics.IncrementCacheMiss()

		writer := &cachedWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = writer
		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK && len(writer.body) > 0 {
			c.Set(key, writer.body)
		}
	}
}
