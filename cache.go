package studiocms

import (
	"strings"
	"sync"
	"time"

	"github.com/northbeam/studiocms/store"
)

// PostCache is an in-memory cache of published posts with TTL. The public
// read endpoints serve from it; every admin write path invalidates it.
type PostCache struct {
	mu      sync.RWMutex
	posts   []*store.Post
	fetched time.Time
	ttl     time.Duration
	store   *store.Store
}

// NewPostCache creates a PostCache backed by the given store.
func NewPostCache(s *store.Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached published posts, reloading when stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]*store.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	published := false
	posts, err := c.store.ListPosts(store.PostFilter{Draft: &published})
	if err != nil {
		return nil, err
	}
	c.posts = posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListPublished returns published posts, optionally narrowed by category,
// tag, or author name.
func (c *PostCache) ListPublished(category, tag, author string) ([]*store.Post, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if category == "" && tag == "" && author == "" {
		return posts, nil
	}
	var filtered []*store.Post
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		if author != "" && p.Author != author {
			continue
		}
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

func hasTag(p *store.Post, tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
