// Package lock serializes work per key, either inside one process or across
// instances through Redis leases.
package lock

import (
	"context"
	"sync"
)

// Locker grants exclusive access to a key until the returned release runs.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TicketKey namespaces ticket ids.
func TicketKey(ticketID string) string {
	return "ticket:" + ticketID
}

type slot struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker. Entries are dropped once nobody holds
// or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

// Acquire blocks until key is free or ctx is done.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			k.unref(key, s)
		})
	}, nil
}

func (k *KeyedMutex) unref(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

// size is used by tests to check entries are reclaimed.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
