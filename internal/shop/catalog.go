package shop

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is an in-memory registry of items by name
type Catalog struct {
	mu    sync.RWMutex
	items map[string]*Item
}

func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*Item)}
}

// Register adds an item; names must be unique
func (c *Catalog) Register(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[item.Key()]; ok {
		return fmt.Errorf("%w: item %s already registered", ErrInvalidArgument, item)
	}
	c.items[item.Key()] = item
	return nil
}

// Get looks up an item by name
func (c *Catalog) Get(name string) (*Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, name)
	}
	return item, nil
}

// List returns all items sorted by name
func (c *Catalog) List() []*Item {
	c.mu.RLock()
	items := make([]*Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	c.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
	return items
}
