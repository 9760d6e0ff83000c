package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// memberLocks hands out one lock per member id. Entries are dropped once
// no caller holds or waits on them.
type memberLocks struct {
	mu    sync.Mutex
	locks map[int64]*memberLock
}

// memberLock is a one-slot semaphore so waiters can give up on ctx.
type memberLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newMemberLocks() *memberLocks {
	return &memberLocks{locks: make(map[int64]*memberLock)}
}

// Lock blocks until the member's lock is held or ctx is done. On success it
// returns the release func.
func (l *memberLocks) Lock(ctx context.Context, memberID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[memberID]
	if !ok {
		lock = &memberLock{sem: semaphore.NewWeighted(1)}
		l.locks[memberID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.drop(memberID, lock)
		return nil, err
	}

	return func() {
		lock.sem.Release(1)
		l.drop(memberID, lock)
	}, nil
}

func (l *memberLocks) drop(memberID int64, lock *memberLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, memberID)
	}
}

func (l *memberLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
