package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
)

const (
	// DefaultSize is the maximum number of repositories kept in the cache
	DefaultSize = 1024

	// DefaultTTL keeps an entry for one default check interval
	DefaultTTL = 12 * time.Hour
)

// ReleaseCache keeps the latest release per repository in memory. Values are
// stored as pointers and only ever replaced, so readers never observe a partially
// written entry.
type ReleaseCache struct {
	lru *expirable.LRU[string, *model.ReleaseInfo]
}

var _ interfaces.ReleaseCache = (*ReleaseCache)(nil)

// NewReleaseCache creates a release cache. A non-positive ttl falls back to DefaultTTL.
func NewReleaseCache(size int, ttl time.Duration) *ReleaseCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &ReleaseCache{
		lru: expirable.NewLRU[string, *model.ReleaseInfo](size, nil, ttl),
	}
}

// Get returns the cached release for repo
func (c *ReleaseCache) Get(repo model.Repository) (*model.ReleaseInfo, bool) {
	return c.lru.Get(repo.CacheKey())
}

// Put replaces the cached release for repo
func (c *ReleaseCache) Put(repo model.Repository, info *model.ReleaseInfo) {
	if info == nil {
		return
	}
	c.lru.Add(repo.CacheKey(), info)
}

// Invalidate drops the cached release for repo
func (c *ReleaseCache) Invalidate(repo model.Repository) {
	c.lru.Remove(repo.CacheKey())
}

// Purge drops every cached release
func (c *ReleaseCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached releases
func (c *ReleaseCache) Len() int {
	return c.lru.Len()
}
