// Package event provides the publish/subscribe primitives shared by scenes,
// grid objects, grid movers and timers.
//
// Listeners are plain Go functions registered under an event name. Their
// parameter list is checked against the emitted arguments at dispatch time;
// a listener whose signature does not match is skipped and reported through
// ErrListenerSignatureMismatch while the remaining listeners still run.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// Errors reported by the emitter.
var (
	ErrListenerSignatureMismatch = errors.New("event: listener signature mismatch")
	ErrInvalidArgument           = errors.New("event: invalid argument")
)

// ListenerID identifies a registered listener. Ids come from a process-wide
// monotonically increasing counter and are never reused.
type ListenerID uint64

var lastListenerID atomic.Uint64

func nextListenerID() ListenerID {
	return ListenerID(lastListenerID.Add(1))
}

// Bus is the listener API shared by scene-local emitters and the engine-wide
// dispatcher.
type Bus interface {
	On(event string, callback any) ListenerID
	Once(event string, callback any) ListenerID
	Emit(event string, args ...any) error
	Off(event string, id ListenerID) bool
	Remove(id ListenerID) bool
	Suspend(id ListenerID, suspend bool) bool
}

type listener struct {
	id        ListenerID
	callback  any
	fn        reflect.Value
	once      bool
	suspended atomic.Bool
	removed   atomic.Bool
}

// Emitter is a many-to-many publish/subscribe hub keyed by event name.
//
// The listener lists are guarded by a mutex that is never held while a
// listener runs, so listeners may re-enter On, Off and Emit on the same
// emitter. Each dispatch iterates over a snapshot; a listener removed during
// the dispatch is skipped if it has not run yet.
type Emitter struct {
	mu     sync.Mutex
	events map[string][]*listener
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{events: make(map[string][]*listener)}
}

// On registers callback for event and returns its id.
// The callback must be a function; anything else panics with ErrInvalidArgument.
func (e *Emitter) On(event string, callback any) ListenerID {
	return e.add(event, callback, false)
}

// Once registers a callback that is removed after its first invocation.
func (e *Emitter) Once(event string, callback any) ListenerID {
	return e.add(event, callback, true)
}

func (e *Emitter) add(event string, callback any, once bool) ListenerID {
	fn := reflect.ValueOf(callback)
	if callback == nil || fn.Kind() != reflect.Func || fn.IsNil() {
		panic(fmt.Errorf("%w: listener for %q must be a function, got %T", ErrInvalidArgument, event, callback))
	}

	l := &listener{
		id:       nextListenerID(),
		callback: callback,
		fn:       fn,
		once:     once,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.events == nil {
		e.events = make(map[string][]*listener)
	}
	e.events[event] = append(e.events[event], l)
	return l.id
}

// Emit invokes every non-suspended listener of event in registration order.
// Listeners whose signature does not accept args are skipped; the returned
// error joins one ErrListenerSignatureMismatch per skipped listener.
func (e *Emitter) Emit(event string, args ...any) error {
	e.mu.Lock()
	registered := e.events[event]
	if len(registered) == 0 {
		e.mu.Unlock()
		return nil
	}
	snapshot := make([]*listener, len(registered))
	copy(snapshot, registered)
	e.mu.Unlock()

	var errs []error
	for _, l := range snapshot {
		if l.removed.Load() || l.suspended.Load() {
			continue
		}
		if l.once {
			if !l.removed.CompareAndSwap(false, true) {
				continue
			}
			e.detach(event, l.id)
		}
		if err := l.invoke(args); err != nil {
			errs = append(errs, fmt.Errorf("%w: event %q listener %d: %v", ErrListenerSignatureMismatch, event, l.id, err))
		}
	}
	return errors.Join(errs...)
}

// invoke calls the listener, using direct calls for the common shapes and
// reflection for everything else.
func (l *listener) invoke(args []any) error {
	switch fn := l.callback.(type) {
	case func():
		if len(args) != 0 {
			return signatureError(l.fn.Type(), args)
		}
		fn()
		return nil
	case func(...any):
		fn(args...)
		return nil
	}

	in, err := convertArgs(l.fn.Type(), args)
	if err != nil {
		return err
	}
	l.fn.Call(in)
	return nil
}

func convertArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, signatureError(t, args)
		}
	} else if len(args) != fixed {
		return nil, signatureError(t, args)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var param reflect.Type
		if i < fixed {
			param = t.In(i)
		} else {
			param = t.In(fixed).Elem()
		}
		v, ok := argValue(arg, param)
		if !ok {
			return nil, signatureError(t, args)
		}
		in[i] = v
	}
	return in, nil
}

func argValue(arg any, param reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch param.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(param), true
		default:
			return reflect.Value{}, false
		}
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(param) {
		return reflect.Value{}, false
	}
	return v, true
}

func signatureError(t reflect.Type, args []any) error {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = fmt.Sprintf("%T", a)
	}
	return fmt.Errorf("expects %s, got (%s)", t, strings.Join(types, ", "))
}

// Off removes the listener id from event. It returns true only the first time.
func (e *Emitter) Off(event string, id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(event, id)
}

// Remove removes the listener id from whichever event it is registered on.
func (e *Emitter) Remove(id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for event := range e.events {
		if e.removeLocked(event, id) {
			return true
		}
	}
	return false
}

func (e *Emitter) detach(event string, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(event, id)
}

func (e *Emitter) removeLocked(event string, id ListenerID) bool {
	list := e.events[event]
	for i, l := range list {
		if l.id != id {
			continue
		}
		l.removed.Store(true)
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(e.events, event)
		} else {
			e.events[event] = list
		}
		return true
	}
	return false
}

// Suspend toggles whether a listener is skipped by Emit. Suspended listeners
// stay registered. Returns false if id is unknown.
func (e *Emitter) Suspend(id ListenerID, suspend bool) bool {
	l := e.find(id)
	if l == nil {
		return false
	}
	l.suspended.Store(suspend)
	return true
}

// IsSuspended reports whether the listener exists and is suspended.
func (e *Emitter) IsSuspended(id ListenerID) bool {
	l := e.find(id)
	return l != nil && l.suspended.Load()
}

func (e *Emitter) find(id ListenerID) *listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, list := range e.events {
		for _, l := range list {
			if l.id == id {
				return l
			}
		}
	}
	return nil
}

// HasEvent reports whether at least one listener is registered for event.
func (e *Emitter) HasEvent(event string) bool {
	return e.ListenerCount(event) > 0
}

// HasListener reports whether id is registered for event.
func (e *Emitter) HasListener(event string, id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.events[event] {
		if l.id == id {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events[event])
}

// ClearEvent removes every listener of event.
func (e *Emitter) ClearEvent(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.events[event] {
		l.removed.Store(true)
	}
	delete(e.events, event)
}

// Clear removes every listener of every event.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, list := range e.events {
		for _, l := range list {
			l.removed.Store(true)
		}
	}
	e.events = make(map[string][]*listener)
}
