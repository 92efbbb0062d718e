package common

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBuildAborted is handed to waiters when the build function panicked.
var ErrBuildAborted = errors.New("lazy: build aborted")

type lazyState int

const (
	stateUnbuilt lazyState = iota
	stateBuilding
	stateReady
)

// Lazy computes a value at most once, on first demand.
//
// The first caller of Get moves the state from unbuilt to building and runs
// the build function without holding the lock. Callers arriving while the
// build runs wait on the condition variable until the ready transition.
// The outcome, value or error, is published once and handed to every caller.
type Lazy[T any] struct {
	build func() (T, error)

	mu    sync.Mutex
	cond  *sync.Cond
	state lazyState
	ready atomic.Bool

	val T
	err error
}

// NewLazy returns an unbuilt Lazy that will call build on first Get.
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	l := &Lazy[T]{build: build}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Get returns the built value, running the build if nobody has yet.
func (l *Lazy[T]) Get() (T, error) {
	if l.ready.Load() {
		return l.val, l.err
	}

	l.mu.Lock()
	for l.state == stateBuilding {
		l.cond.Wait()
	}
	if l.state == stateReady {
		l.mu.Unlock()
		return l.val, l.err
	}
	l.state = stateBuilding
	l.mu.Unlock()

	var (
		val  T
		err  error
		done bool
	)
	defer func() {
		// also runs when build panics, so waiters are never stranded
		if !done {
			err = ErrBuildAborted
		}
		l.mu.Lock()
		l.val, l.err = val, err
		l.state = stateReady
		l.ready.Store(true)
		l.cond.Broadcast()
		l.mu.Unlock()
	}()
	val, err = l.build()
	done = true
	return val, err
}

// Ready reports whether the build has completed.
func (l *Lazy[T]) Ready() bool {
	return l.ready.Load()
}
