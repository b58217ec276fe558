package api

import (
	"sync"
	"time"
)

// Catalog is one consistent snapshot of the server's client/project/task lists.
type Catalog struct {
	Clients  []Client
	Projects []Project
	Tasks    []Task
}

type catalogCache struct {
	mu        sync.RWMutex
	catalog   *Catalog
	fetchedAt time.Time
	ttl       time.Duration
}

func newCatalogCache(ttl time.Duration) *catalogCache {
	return &catalogCache{ttl: ttl}
}

func (c *catalogCache) Get() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.catalog == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}

	result := &Catalog{
		Clients:  make([]Client, len(c.catalog.Clients)),
		Projects: make([]Project, len(c.catalog.Projects)),
		Tasks:    make([]Task, len(c.catalog.Tasks)),
	}
	copy(result.Clients, c.catalog.Clients)
	copy(result.Projects, c.catalog.Projects)
	copy(result.Tasks, c.catalog.Tasks)
	return result
}

func (c *catalogCache) Set(cat *Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := &Catalog{
		Clients:  make([]Client, len(cat.Clients)),
		Projects: make([]Project, len(cat.Projects)),
		Tasks:    make([]Task, len(cat.Tasks)),
	}
	copy(stored.Clients, cat.Clients)
	copy(stored.Projects, cat.Projects)
	copy(stored.Tasks, cat.Tasks)

	c.catalog = stored
	c.fetchedAt = time.Now()
}

func (c *catalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = nil
}
