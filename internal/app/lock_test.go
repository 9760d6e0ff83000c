package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustLock(t *testing.T, locks *memberLocks, memberID int64) func() {
	t.Helper()
	release, err := locks.Lock(context.Background(), memberID)
	if err != nil {
		t.Fatalf("lock member %d: %v", memberID, err)
	}
	return release
}

func waitForEmpty(t *testing.T, locks *memberLocks) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for locks.size() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected locks to be dropped, %d left", locks.size())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMemberLocksBlockSameMember(t *testing.T) {
	locks := newMemberLocks()
	release := mustLock(t, locks, 1)

	acquired := make(chan struct{})
	go func() {
		unlock, err := locks.Lock(context.Background(), 1)
		if err != nil {
			t.Errorf("second lock failed: %v", err)
			return
		}
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock for same member must wait")
	case <-time.After(20 * time.Millisecond):
	}

	other := mustLock(t, locks, 2)
	other()

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("expected waiter to acquire lock after release")
	}

	waitForEmpty(t, locks)
}

func TestMemberLocksWaitHonoursContext(t *testing.T) {
	locks := newMemberLocks()
	release := mustLock(t, locks, 1)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		unlock, err := locks.Lock(ctx, 1)
		if unlock != nil {
			unlock()
		}
		result <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled waiter must not stay blocked behind the holder")
	}

	release()
	waitForEmpty(t, locks)

	again := mustLock(t, locks, 1)
	again()
	waitForEmpty(t, locks)
}

func TestMemberLocksAlreadyCancelledContext(t *testing.T) {
	locks := newMemberLocks()
	release := mustLock(t, locks, 5)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.Lock(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
