package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data     string
	expireAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// LocalCache is an in-process Cache. Expired entries are dropped lazily on
// read and by a background GC goroutine.
type LocalCache struct {
	kv        sync.Map // key → *entry
	stopGC    chan struct{}
	closeOnce sync.Once
}

func NewLocalCache(gcInterval time.Duration) *LocalCache {
	if gcInterval <= 0 {
		gcInterval = time.Minute
	}
	c := &LocalCache{stopGC: make(chan struct{})}
	go c.runGC(gcInterval)
	return c
}

func (c *LocalCache) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			c.kv.Range(func(k, v interface{}) bool {
				if v.(*entry).expired(now) {
					c.kv.Delete(k)
				}
				return true
			})
		case <-c.stopGC:
			return
		}
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	e := v.(*entry)
	if e.expired(time.Now()) {
		c.kv.Delete(key)
		return "", ErrNotFound
	}
	return e.data, nil
}

// Set stores value under key. A zero ttl never expires.
func (c *LocalCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	e := &entry{data: value}
	if ttl > 0 {
		e.expireAt = time.Now().Add(ttl)
	}
	c.kv.Store(key, e)
	return nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.kv.Delete(k)
	}
	return nil
}

// Close stops the background GC goroutine.
func (c *LocalCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopGC) })
	return nil
}
