package service

import (
	"strings"
	"sync"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// CatalogCache holds the locally cached catalog fed by the store's change
// subscription. Each delivered snapshot is authoritative: ReplaceSnapshot
// replaces the cache wholesale, never merge-patches it. Derived views are
// pure functions of (snapshot, query, tag).
type CatalogCache struct {
	mu    sync.RWMutex
	items []domain.Design
}

func NewCatalogCache() *CatalogCache {
	return &CatalogCache{}
}

// ReplaceSnapshot installs a new full snapshot. Items are expected to arrive
// ordered by creation time, newest first.
func (c *CatalogCache) ReplaceSnapshot(items []domain.Design) {
	copied := make([]domain.Design, len(items))
	copy(copied, items)
	c.mu.Lock()
	c.items = copied
	c.mu.Unlock()
}

// VisibleItems filters the snapshot to the public catalog: approved items
// whose title or tag contains query case-insensitively (empty query matches
// all), restricted to an exact tag match unless tag is "All". Filtering an
// already-filtered result with the same arguments yields the same set.
func (c *CatalogCache) VisibleItems(query, tag string) []domain.Design {
	c.mu.RLock()
	snapshot := c.items
	c.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]domain.Design, 0, len(snapshot))
	for _, d := range snapshot {
		if !d.Visible() {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Title), q) &&
			!strings.Contains(strings.ToLower(d.Tag), q) {
			continue
		}
		if tag != domain.TagAll && tag != "" && d.Tag != tag {
			continue
		}
		out = append(out, d)
	}
	return out
}

// TotalVisibleCount counts items passing only the status filter, independent
// of search text and tag. Used for the dashboard counter.
func (c *CatalogCache) TotalVisibleCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, d := range c.items {
		if d.Visible() {
			n++
		}
	}
	return n
}
