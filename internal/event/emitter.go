// Package event provides a small typed observer list.
//
// Handlers run synchronously on the emitting goroutine, in subscription order.
// Emit works on a snapshot, so handlers may subscribe or unsubscribe freely.
package event

import "sync"

// Subscription is returned by On and removes its handler when unsubscribed.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Emitter delivers values of type T to registered handlers.
type Emitter[T any] struct {
	mu       sync.RWMutex
	nextID   uint64
	order    []uint64
	handlers map[uint64]func(T)
}

// On registers fn and returns its subscription.
func (e *Emitter[T]) On(fn func(T)) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[uint64]func(T))
	}
	id := e.nextID
	e.nextID++
	e.handlers[id] = fn
	e.order = append(e.order, id)

	return &Subscription{cancel: func() { e.remove(id) }}
}

// Emit calls every handler with v.
func (e *Emitter[T]) Emit(v T) {
	e.mu.RLock()
	fns := make([]func(T), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.handlers[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active handlers.
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// Clear removes all handlers.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = nil
	e.order = nil
}

func (e *Emitter[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.handlers[id]; !ok {
		return
	}
	delete(e.handlers, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}
