package memory

import "sync"

// collection is an ordered, mutex-guarded list of records. Index 0 is the
// head of the list; new records are prepended.
type collection[T any] struct {
	mu    sync.RWMutex
	items []*T
	id    func(*T) string
	clone func(*T) *T
}

func newCollection[T any](id func(*T) string, clone func(*T) *T) *collection[T] {
	return &collection[T]{id: id, clone: clone}
}

// ids must be called with the lock held.
func (c *collection[T]) ids() []string {
	out := make([]string, len(c.items))
	for i, item := range c.items {
		out[i] = c.id(item)
	}
	return out
}

// indexOf must be called with the lock held.
func (c *collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if c.id(item) == id {
			return i
		}
	}
	return -1
}

// prepend must be called with the write lock held.
func (c *collection[T]) prepend(item *T) {
	c.items = append([]*T{c.clone(item)}, c.items...)
}

func (c *collection[T]) get(id string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return c.clone(c.items[i]), true
}

// update applies mutate to a copy and stores it only when mutate succeeds.
func (c *collection[T]) update(id string, notFound error, mutate func(*T) error) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, notFound
	}
	next := c.clone(c.items[i])
	if err := mutate(next); err != nil {
		return nil, err
	}
	c.items[i] = next
	return c.clone(next), nil
}

func (c *collection[T]) filter(match func(*T) bool) []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*T, 0, len(c.items))
	for _, item := range c.items {
		if match(item) {
			out = append(out, c.clone(item))
		}
	}
	return out
}

// seed appends records in the given order, keeping their identifiers.
// Records whose id is already present are skipped.
func (c *collection[T]) seed(items []*T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, item := range items {
		if c.indexOf(c.id(item)) >= 0 {
			continue
		}
		c.items = append(c.items, c.clone(item))
		added++
	}
	return added
}

func shallowClone[T any](v *T) *T {
	c := *v
	return &c
}
