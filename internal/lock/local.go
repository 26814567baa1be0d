package lock

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// LocalLocker serializes callers inside one process.
// Each key maps to a weight-one semaphore that is dropped once nobody references it.
type LocalLocker struct {
	wait time.Duration

	mu      sync.Mutex
	entries map[string]*localEntry
}

type localEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// NewLocalLocker creates a LocalLocker that gives up after wait
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		wait:    wait,
		entries: make(map[string]*localEntry),
	}
}

// Acquire implements Locker
func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		e := l.ref(key)
		if err := e.sem.Acquire(waitCtx, 1); err != nil {
			l.unref(key)
			l.releaseAll(held)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrBusy
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.releaseAll(held) })
	}, nil
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *LocalLocker) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		e := l.entries[keys[i]]
		l.mu.Unlock()
		if e != nil {
			e.sem.Release(1)
		}
		l.unref(keys[i])
	}
}

// size reports how many keys are currently tracked
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
