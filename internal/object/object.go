// Package object provides the identity, tagging, property-change and
// destruction plumbing shared by every engine entity.
package object

import (
	"sync/atomic"

	"github.com/vovakirdan/gridstage/internal/event"
)

// ID is a process-wide unique object identifier. Ids increase monotonically
// and are never reused.
type ID uint64

var lastID atomic.Uint64

// NextID allocates a fresh object id.
func NextID() ID {
	return ID(lastID.Add(1))
}

// Reserved event names emitted by every Object.
const (
	EventDestruction = "destruction"
	propertyPrefix   = "propertyChange_"
)

// Object carries an id, a mutable tag, a property-change channel keyed by
// property name and a destruction event. Domain types embed it.
type Object struct {
	id        ID
	className string
	tag       string
	events    *event.Emitter
	destroyed bool
}

// New creates an object of the given class name (e.g. "GridObject").
func New(className string) Object {
	return Object{
		id:        NextID(),
		className: className,
		events:    event.NewEmitter(),
	}
}

// ID returns the unique object id.
func (o *Object) ID() ID {
	return o.id
}

// ClassName returns the concrete class name given at construction.
func (o *Object) ClassName() string {
	return o.className
}

// Tag returns the user-assigned tag.
func (o *Object) Tag() string {
	return o.tag
}

// SetTag changes the tag and emits a PropTag change.
func (o *Object) SetTag(tag string) {
	if o.tag == tag {
		return
	}
	o.tag = tag
	o.EmitChange(NewProperty(PropTag, tag))
}

// Events returns the object's emitter. Subclasses emit their own named
// events on it.
func (o *Object) Events() *event.Emitter {
	return o.events
}

// OnPropertyChange registers cb for changes of the named property.
func (o *Object) OnPropertyChange(name PropertyName, cb func(Property)) event.ListenerID {
	return o.events.On(propertyPrefix+string(name), cb)
}

// OffPropertyChange removes a property-change listener.
func (o *Object) OffPropertyChange(name PropertyName, id event.ListenerID) bool {
	return o.events.Off(propertyPrefix+string(name), id)
}

// EmitChange notifies listeners of p's property. Callers mutate state first.
func (o *Object) EmitChange(p Property) {
	o.events.Emit(propertyPrefix+string(p.Name()), p) //nolint:errcheck // listeners are typed func(Property)
}

// OnDestruction registers cb to run when the object is destroyed.
func (o *Object) OnDestruction(cb func()) event.ListenerID {
	return o.events.On(EventDestruction, cb)
}

// Unsubscribe removes any listener id from the object's emitter.
func (o *Object) Unsubscribe(id event.ListenerID) bool {
	return o.events.Remove(id)
}

// IsDestroyed reports whether Destroy has been called.
func (o *Object) IsDestroyed() bool {
	return o.destroyed
}

// Destroy emits the destruction event once and then drops every listener.
// Subsequent calls do nothing.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	o.events.Emit(EventDestruction) //nolint:errcheck // destruction listeners take no arguments
	o.events.Clear()
}
