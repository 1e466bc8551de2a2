// Package event provides typed in-process subscriptions with explicit
// unsubscribe handles.
package event

import (
	"sync"

	"github.com/google/uuid"
)

type subscriber[T any] struct {
	id string
	fn func(T)
}

// Emitter fans a value out to every current subscriber, in subscription order.
// The zero value is ready to use.
type Emitter[T any] struct {
	mu   sync.RWMutex
	subs []subscriber[T]
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (e *Emitter[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	id := uuid.NewString()

	e.mu.Lock()
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	e.mu.Unlock()

	return sync.OnceFunc(func() { e.remove(id) })
}

// Emit calls every subscriber with v. Subscribers run on the caller's goroutine.
func (e *Emitter[T]) Emit(v T) {
	e.mu.RLock()
	subs := make([]subscriber[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

// Reset drops every subscriber.
func (e *Emitter[T]) Reset() {
	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
}

func (e *Emitter[T]) remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}
