package orchestrator

import "sync"

// keyedMutex serializes runs per thread id. The lock covers one full
// state-machine run for one turn, never the lifetime of a suspension.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*threadLock)}
}

// Lock acquires the mutex for a thread id and returns its unlock func.
// Entries are reference-counted so the map does not grow with every
// thread ever seen.
func (k *keyedMutex) Lock(threadID string) func() {
	k.mu.Lock()
	l, ok := k.locks[threadID]
	if !ok {
		l = &threadLock{}
		k.locks[threadID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, threadID)
		}
		k.mu.Unlock()
	}
}
