// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache keeps rendered public frame views keyed by path.
package cache

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielhkuo/quickly-frame/metrics"
)

// ListPath is revalidated when the set of frames changes. It drops every
// cached view.
const ListPath = "/"

// FramePath is the cache key of a frame's rendered view.
func FramePath(id string) string {
	return "/frame/" + id
}

type ViewCache struct {
	views *lru.Cache[string, []byte]
}

func NewViewCache(size int) (*ViewCache, error) {
	views, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to create view cache: %w", err)
	}
	return &ViewCache{views: views}, nil
}

func (c *ViewCache) Get(path string) ([]byte, bool) {
	view, ok := c.views.Get(path)
	metrics.RecordCacheLookup(ok)
	return view, ok
}

func (c *ViewCache) Set(path string, view []byte) {
	c.views.Add(path, view)
}

// Revalidate marks path stale.
func (c *ViewCache) Revalidate(path string) {
	if path == ListPath {
		c.views.Purge()
		slog.Debug("view cache purged")
		return
	}
	if c.views.Remove(path) {
		slog.Debug("view evicted", "path", path)
	}
}

func (c *ViewCache) Len() int {
	return c.views.Len()
}
