// Package observable holds a value and notifies listeners synchronously after
// every mutation.
package observable

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Listener receives the value as it is right after a mutation.
type Listener[T any] func(ctx context.Context, v T) error

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// Value is a mutable value with change listeners.
//
// Mutations are serialized: a mutation and the notification of its listeners
// complete before the next mutation starts, so listeners see changes in
// order. The new value is visible to Get before any listener runs.
// Listeners must not mutate the Value they are subscribed to.
type Value[T any] struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	value     T
	listeners []subscription[T]
	nextID    uint64
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the value and notifies listeners.
func (v *Value[T]) Set(ctx context.Context, next T) error {
	return v.Update(ctx, func(cur *T) {
		*cur = next
	})
}

// Update applies fn to the value and notifies listeners. Every listener runs
// even when an earlier one fails; the returned error combines their errors.
func (v *Value[T]) Update(ctx context.Context, fn func(*T)) error {
	return v.UpdateIf(ctx, func(cur *T) bool {
		fn(cur)
		return true
	})
}

// UpdateIf is Update for mutations that may turn out to be no-ops: when fn
// returns false nothing is notified. fn must not modify the value in that case.
func (v *Value[T]) UpdateIf(ctx context.Context, fn func(*T) bool) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	v.mu.Lock()
	if !fn(&v.value) {
		v.mu.Unlock()
		return nil
	}
	current := v.value
	listeners := make([]Listener[T], len(v.listeners))
	for i, s := range v.listeners {
		listeners[i] = s.fn
	}
	v.mu.Unlock()

	var err error
	for _, l := range listeners {
		err = multierr.Append(err, l(ctx, current))
	}
	return err
}

// Subscribe registers l after the existing listeners. The returned function
// removes it and is safe to call more than once.
func (v *Value[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.listeners = append(v.listeners, subscription[T]{id: id, fn: l})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.listeners {
				if s.id == id {
					v.listeners = append(v.listeners[:i:i], v.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
