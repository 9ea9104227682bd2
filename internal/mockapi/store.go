package mockapi

import (
	"sort"
	"strconv"
	"sync"
)

// Item is one member of a collection.
type Item = map[string]any

type collection struct {
	next  int
	items map[string]Item
}

// Store keeps collections in memory. Ids are assigned sequentially per
// collection starting at 1 unless the created item carries its own "id".
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{items: make(map[string]Item)}
		s.collections[name] = c
	}
	return c
}

// List returns the members of name ordered by id.
func (s *Store) List(name string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Item{}
	c, ok := s.collections[name]
	if !ok {
		return out
	}
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
	for _, id := range ids {
		out = append(out, clone(c.items[id]))
	}
	return out
}

// Get returns the member id of name.
func (s *Store) Get(name, id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return clone(item), true
}

// Create adds item to name and returns it with its id.
func (s *Store) Create(name string, item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	item = clone(item)
	id, ok := idOf(item)
	if !ok {
		c.next++
		id = strconv.Itoa(c.next)
		for _, taken := c.items[id]; taken; _, taken = c.items[id] {
			c.next++
			id = strconv.Itoa(c.next)
		}
	}
	item["id"] = id
	c.items[id] = item
	return clone(item)
}

// Replace stores item as member id, creating it if absent.
func (s *Store) Replace(name, id string, item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item = clone(item)
	item["id"] = id
	s.coll(name).items[id] = item
	return clone(item)
}

// Patch merges fields into member id.
func (s *Store) Patch(name, id string, fields Item) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	for k, v := range fields {
		if k != "id" {
			item[k] = v
		}
	}
	return clone(item), true
}

// Delete removes member id and reports whether it existed.
func (s *Store) Delete(name, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return false
	}
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Seed loads items into name, keeping their ids when present.
func (s *Store) Seed(name string, items ...Item) {
	for _, item := range items {
		s.Create(name, item)
	}
}

func idOf(item Item) (string, bool) {
	switch v := item["id"].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	}
	return "", false
}

// lessID orders numeric ids numerically and everything else lexically
// after them.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

func clone(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
