package event

import "sync"

// Dispatcher is the engine-wide emitter used for cross-scene signalling.
//
// It is reference counted: the engine creates it lazily and holds the first
// reference, scenes acquire one while they are alive. When the last
// reference is released every listener is dropped. Listeners capturing
// scene-local state must be removed before that scene is destroyed.
type Dispatcher struct {
	*Emitter

	mu   sync.Mutex
	refs int
}

// NewDispatcher creates a dispatcher holding one reference.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Emitter: NewEmitter(),
		refs:    1,
	}
}

// Acquire adds a strong reference and returns the dispatcher.
func (d *Dispatcher) Acquire() *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refs++
	return d
}

// Release drops a strong reference. Releasing the last one clears all
// listeners and reports true.
func (d *Dispatcher) Release() bool {
	d.mu.Lock()
	if d.refs == 0 {
		d.mu.Unlock()
		return false
	}
	d.refs--
	last := d.refs == 0
	d.mu.Unlock()

	if last {
		d.Clear()
	}
	return last
}

// References returns the number of live strong references.
func (d *Dispatcher) References() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refs
}
