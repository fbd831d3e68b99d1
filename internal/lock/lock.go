// Package lock serializes mutating operations per room.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrTimeout is returned when the lock could not be acquired before the
// context expired.
var ErrTimeout = errors.New("timed out waiting for room lock")

// Locker hands out mutual exclusion keyed by an arbitrary string. Unlock
// must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Local is an in-process Locker. Entries are dropped once nobody holds or
// waits on them, so idle keys cost nothing.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, errors.Join(ErrTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
