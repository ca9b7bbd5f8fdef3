// Package lazy provides a generic memoize-once primitive used throughout
// the node tree and chunked dataset engine for deferred, at-most-once
// initialization.
package lazy

import "sync"

// Value holds a T that is computed at most once, the first time Get is
// called with an initializer. Concurrent callers racing the first Get all
// block until initialization completes and observe the same (value, error)
// pair; a failed initializer's error is cached and replayed on every
// subsequent Get without re-running the initializer.
type Value[T any] struct {
	once sync.Once
	val  T
	err  error
}

// Get returns the memoized value, running init the first time it is
// called. Safe for concurrent use.
func (v *Value[T]) Get(init func() (T, error)) (T, error) {
	v.once.Do(func() {
		v.val, v.err = init()
	})
	return v.val, v.err
}
