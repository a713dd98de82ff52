package badge

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type memStore struct {
	mu     sync.Mutex
	counts map[string]int64
	writes int
}

func newMemStore() *memStore {
	return &memStore{counts: make(map[string]int64)}
}

func (s *memStore) store(ctx context.Context, userID string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID] = n
	s.writes++
	return nil
}

func (s *memStore) get(userID string) (int64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], s.writes
}

func TestKickRefreshesUser(t *testing.T) {
	store := newMemStore()
	r := NewRefresher(time.Hour, func(ctx context.Context, userID string) (int64, error) {
		return 7, nil
	}, store.store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Kick("u1")
	waitFor(t, func() bool { n, _ := store.get("u1"); return n == 7 })
}

func TestRedundantKicksConverge(t *testing.T) {
	var source int64 = 3
	store := newMemStore()
	r := NewRefresher(time.Hour, func(ctx context.Context, userID string) (int64, error) {
		return atomic.LoadInt64(&source), nil
	}, store.store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// Poll path and event path both recompute; the displayed value settles on
	// whatever the source says last.
	r.Kick("u1")
	r.Kick("u1")
	r.Kick("u1")
	waitFor(t, func() bool { n, _ := store.get("u1"); return n == 3 })

	atomic.StoreInt64(&source, 5)
	r.Kick("u1")
	waitFor(t, func() bool { n, _ := store.get("u1"); return n == 5 })
}

func TestPollRefreshesWatchedUsers(t *testing.T) {
	store := newMemStore()
	r := NewRefresher(5*time.Millisecond, func(ctx context.Context, userID string) (int64, error) {
		return 2, nil
	}, store.store)
	r.Watch("u1")
	r.Watch("u2")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	waitFor(t, func() bool {
		a, _ := store.get("u1")
		b, _ := store.get("u2")
		return a == 2 && b == 2
	})
}

func TestUnwatchStopsPolling(t *testing.T) {
	store := newMemStore()
	r := NewRefresher(5*time.Millisecond, func(ctx context.Context, userID string) (int64, error) {
		return 1, nil
	}, store.store)
	r.Watch("u1")
	r.Unwatch("u1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	if _, writes := store.get("u1"); writes != 0 {
		t.Fatalf("expected no writes for unwatched user, got %d", writes)
	}
}

func TestNoWritesAfterCancel(t *testing.T) {
	store := newMemStore()
	r := NewRefresher(time.Hour, func(ctx context.Context, userID string) (int64, error) {
		return 9, nil
	}, store.store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	<-done
	r.Kick("u1")
	time.Sleep(20 * time.Millisecond)
	if _, writes := store.get("u1"); writes != 0 {
		t.Fatalf("expected no writes after shutdown, got %d", writes)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
