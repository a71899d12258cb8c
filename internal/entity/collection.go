package entity

// Collection is an insertion-ordered set of entities keyed by ID.
//
// Setting an existing key replaces the value but keeps its position, so
// iteration order is the order in which ids were first seen.
type Collection[E Entity] struct {
	keys  []ID
	items map[ID]E
}

// NewCollection returns a collection holding the given entities.
func NewCollection[E Entity](entities ...E) *Collection[E] {
	c := &Collection[E]{items: make(map[ID]E, len(entities))}
	for _, e := range entities {
		c.Set(e)
	}
	return c
}

// Set adds or replaces the entity under its ID.
func (c *Collection[E]) Set(e E) {
	id := e.Meta().ID
	if _, ok := c.items[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.items[id] = e
}

// Get returns the entity stored under id.
func (c *Collection[E]) Get(id ID) (E, bool) {
	e, ok := c.items[id]
	return e, ok
}

// Has reports whether id is a key of the collection.
func (c *Collection[E]) Has(id ID) bool {
	if c == nil {
		return false
	}
	_, ok := c.items[id]
	return ok
}

// Delete removes id. It is a no-op when id is absent.
func (c *Collection[E]) Delete(id ID) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, key := range c.keys {
		if key == id {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entities.
func (c *Collection[E]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the ids in iteration order.
func (c *Collection[E]) Keys() []ID {
	if c == nil {
		return nil
	}
	return append([]ID(nil), c.keys...)
}

// Values returns the entities in iteration order.
func (c *Collection[E]) Values() []E {
	if c == nil {
		return nil
	}
	values := make([]E, 0, len(c.keys))
	for _, id := range c.keys {
		values = append(values, c.items[id])
	}
	return values
}

// First returns the first entity in iteration order.
func (c *Collection[E]) First() (E, bool) {
	var zero E
	if c.Len() == 0 {
		return zero, false
	}
	return c.items[c.keys[0]], true
}

// Clone returns a shallow copy: a new key set sharing the entity values.
func (c *Collection[E]) Clone() *Collection[E] {
	clone := &Collection[E]{items: make(map[ID]E, c.Len())}
	if c == nil {
		return clone
	}
	clone.keys = append([]ID(nil), c.keys...)
	for id, e := range c.items {
		clone.items[id] = e
	}
	return clone
}

// IDSet returns the keys as a set.
func (c *Collection[E]) IDSet() map[ID]struct{} {
	set := make(map[ID]struct{}, c.Len())
	for _, id := range c.Keys() {
		set[id] = struct{}{}
	}
	return set
}

// Merge unions collections keyed by id. A later collection's entry for a
// duplicate id overrides the earlier one.
func Merge[E Entity](collections ...*Collection[E]) *Collection[E] {
	merged := NewCollection[E]()
	for _, c := range collections {
		for _, e := range c.Values() {
			merged.Set(e)
		}
	}
	return merged
}
