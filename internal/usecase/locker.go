package usecase

import "sync"

// keyedMutex serializes work per key. Entries live only while someone holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*refMutex),
	}
}

// Lock - blocks until key is free and returns its unlock func.
func (that *keyedMutex) Lock(key string) func() {
	that.mu.Lock()
	l, ok := that.locks[key]
	if !ok {
		l = &refMutex{}
		that.locks[key] = l
	}
	l.refs++
	that.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}

func (that *keyedMutex) len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
