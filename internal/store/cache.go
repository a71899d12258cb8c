package store

import "github.com/roach88/todo-manager/internal/entity"

// dependents maps a kind to the kinds whose decoded entities embed it.
var dependents = map[entity.Kind][]entity.Kind{
	entity.KindTask:     {entity.KindBoard},
	entity.KindFlowStep: {entity.KindFlow, entity.KindBoard},
	entity.KindFlow:     {entity.KindBoard},
	entity.KindBoard:    {entity.KindBoard},
}

// Cache holds decoded entities per kind.
type Cache struct {
	kinds map[entity.Kind]*kindCache
}

type kindCache struct {
	byID   map[entity.ID]entity.Entity
	order  []entity.ID
	listed bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{kinds: make(map[entity.Kind]*kindCache)}
}

func (c *Cache) of(kind entity.Kind) *kindCache {
	kc, ok := c.kinds[kind]
	if !ok {
		kc = &kindCache{byID: make(map[entity.ID]entity.Entity)}
		c.kinds[kind] = kc
	}
	return kc
}

// Get returns a cached entity.
func (c *Cache) Get(kind entity.Kind, id entity.ID) (entity.Entity, bool) {
	e, ok := c.of(kind).byID[id]
	return e, ok
}

// Put caches e. A new id invalidates the cached listing of its kind.
func (c *Cache) Put(e entity.Entity) {
	kc := c.of(e.Kind())
	id := e.Meta().ID
	if _, ok := kc.byID[id]; !ok && kc.listed {
		kc.listed = false
		kc.order = nil
	}
	kc.byID[id] = e
}

// List returns the cached listing of kind, if one was stored.
func (c *Cache) List(kind entity.Kind) ([]entity.Entity, bool) {
	kc := c.of(kind)
	if !kc.listed {
		return nil, false
	}
	list := make([]entity.Entity, 0, len(kc.order))
	for _, id := range kc.order {
		list = append(list, kc.byID[id])
	}
	return list, true
}

// SetList caches a complete listing of kind.
func (c *Cache) SetList(kind entity.Kind, entities []entity.Entity) {
	kc := c.of(kind)
	kc.order = kc.order[:0]
	for _, e := range entities {
		kc.byID[e.Meta().ID] = e
		kc.order = append(kc.order, e.Meta().ID)
	}
	kc.listed = true
}

// Delete drops one entity.
func (c *Cache) Delete(kind entity.Kind, id entity.ID) {
	kc := c.of(kind)
	delete(kc.byID, id)
	for i, cached := range kc.order {
		if cached == id {
			kc.order = append(kc.order[:i:i], kc.order[i+1:]...)
			break
		}
	}
}

// Invalidate drops everything cached for the given kinds.
func (c *Cache) Invalidate(kinds ...entity.Kind) {
	for _, kind := range kinds {
		delete(c.kinds, kind)
	}
}

// InvalidateDependents drops the kinds that embed kind.
func (c *Cache) InvalidateDependents(kind entity.Kind) {
	c.Invalidate(dependents[kind]...)
}
