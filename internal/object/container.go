package object

import (
	"sort"
	"sync"
)

// Identifiable is anything with an object id and tag.
type Identifiable interface {
	ID() ID
	Tag() string
}

// Destroyable is implemented by entities that emit a destruction event.
type Destroyable interface {
	Destroy()
}

// Container owns a set of entities in insertion order. Removing an entity
// destroys it if it implements Destroyable.
type Container[T Identifiable] struct {
	items []T
}

// NewContainer creates an empty container.
func NewContainer[T Identifiable]() *Container[T] {
	return &Container[T]{}
}

// Add appends item. Adding an item whose id is already present is ignored.
func (c *Container[T]) Add(item T) bool {
	if c.indexOf(item.ID()) >= 0 {
		return false
	}
	c.items = append(c.items, item)
	return true
}

func (c *Container[T]) indexOf(id ID) int {
	for i, it := range c.items {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

// FindByID returns the item with the given id.
func (c *Container[T]) FindByID(id ID) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// FindByTag returns the first item carrying tag.
func (c *Container[T]) FindByTag(tag string) (T, bool) {
	for _, it := range c.items {
		if it.Tag() == tag {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Remove takes the item out of the container and destroys it.
func (c *Container[T]) Remove(id ID) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	destroy(item)
	return true
}

// Release takes the item out of the container without destroying it.
func (c *Container[T]) Release(id ID) (T, bool) {
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return item, true
}

// RemoveIf removes and destroys every item matching pred. Returns the count.
func (c *Container[T]) RemoveIf(pred func(T) bool) int {
	kept := c.items[:0]
	var removed []T
	for _, it := range c.items {
		if pred(it) {
			removed = append(removed, it)
		} else {
			kept = append(kept, it)
		}
	}
	c.items = kept
	for _, it := range removed {
		destroy(it)
	}
	return len(removed)
}

// ForEach calls fn for every item in insertion order over a snapshot, so fn
// may add or remove items.
func (c *Container[T]) ForEach(fn func(T)) {
	snapshot := make([]T, len(c.items))
	copy(snapshot, c.items)
	for _, it := range snapshot {
		fn(it)
	}
}

// Items returns a copy of the items in insertion order.
func (c *Container[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Container[T]) Len() int {
	return len(c.items)
}

// Clear destroys and removes every item.
func (c *Container[T]) Clear() {
	items := c.items
	c.items = nil
	for _, it := range items {
		destroy(it)
	}
}

func destroy[T any](item T) {
	if d, ok := any(item).(Destroyable); ok {
		d.Destroy()
	}
}

// PropertyContainer is a keyed bag of properties with change listeners.
// The engine uses it as its read-mostly cache shared by all scenes.
type PropertyContainer struct {
	mu        sync.RWMutex
	props     map[PropertyName]Property
	listeners []func(Property)
}

// NewPropertyContainer creates an empty property bag.
func NewPropertyContainer() *PropertyContainer {
	return &PropertyContainer{props: make(map[PropertyName]Property)}
}

// Set stores p, replacing any property with the same name, and notifies
// listeners after the write is visible.
func (c *PropertyContainer) Set(p Property) {
	c.mu.Lock()
	c.props[p.Name()] = p
	listeners := append([]func(Property){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}

// Get returns the property with the given name.
func (c *PropertyContainer) Get(name PropertyName) (Property, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.props[name]
	return p, ok
}

// Has reports whether a property with the given name exists.
func (c *PropertyContainer) Has(name PropertyName) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes a property.
func (c *PropertyContainer) Remove(name PropertyName) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.props[name]; !ok {
		return false
	}
	delete(c.props, name)
	return true
}

// Names returns the stored property names sorted alphabetically.
func (c *PropertyContainer) Names() []PropertyName {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]PropertyName, 0, len(c.props))
	for n := range c.props {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of stored properties.
func (c *PropertyContainer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.props)
}

// OnChange registers fn to be called after every Set.
func (c *PropertyContainer) OnChange(fn func(Property)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Clear removes every property.
func (c *PropertyContainer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props = make(map[PropertyName]Property)
}

// GetValue reads a typed value from the container.
func GetValue[T Value](c *PropertyContainer, name PropertyName) (T, bool) {
	p, ok := c.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	v, err := Get[T](p)
	return v, err == nil
}
