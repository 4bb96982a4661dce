package core

import "sync"

// Observable holds a value and notifies listeners when it changes.
//
// Observable is safe for concurrent use. Listeners run synchronously on the
// goroutine that called Set, after the internal lock has been released, so a
// listener may read the observable (or Set it again) without deadlocking.
//
//	counter := core.NewObservable(0)
//	unsub := counter.AddListener(func(v int) { fmt.Println(v) })
//	counter.Set(5)
//	unsub()
type Observable[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners map[int]func(T)
	nextID    int
}

// NewObservable creates an observable that notifies on every Set.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value:     initial,
		listeners: make(map[int]func(T)),
	}
}

// NewObservableWithEquality creates an observable that skips notification
// when equal reports the new value matches the current one.
func NewObservableWithEquality[T any](initial T, equal func(a, b T) bool) *Observable[T] {
	o := NewObservable(initial)
	o.equal = equal
	return o
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the value and notifies listeners.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	if o.equal != nil && o.equal(o.value, value) {
		o.mu.Unlock()
		return
	}
	o.value = value
	listeners := o.snapshotLocked()
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
}

// Update applies transform to the current value and stores the result.
func (o *Observable[T]) Update(transform func(T) T) {
	o.Set(transform(o.Value()))
}

// AddListener registers fn and returns a function that removes it.
func (o *Observable[T]) AddListener(fn func(T)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// ListenerCount returns the number of registered listeners.
func (o *Observable[T]) ListenerCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.listeners)
}

// snapshotLocked copies listeners in registration order.
func (o *Observable[T]) snapshotLocked() []func(T) {
	if len(o.listeners) == 0 {
		return nil
	}
	out := make([]func(T), 0, len(o.listeners))
	for id := 0; id < o.nextID; id++ {
		if fn, ok := o.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
