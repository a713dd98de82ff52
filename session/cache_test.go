package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetCachesWithinTTL(t *testing.T) {
	var calls int32
	c := NewCache(time.Minute, func(ctx context.Context, token string) (Session, error) {
		atomic.AddInt32(&calls, 1)
		return Session{UserID: "u1"}, nil
	})

	for i := 0; i < 3; i++ {
		s, err := c.Get(context.Background(), "tok")
		if err != nil {
			t.Fatal(err)
		}
		if s.UserID != "u1" {
			t.Fatalf("unexpected session %+v", s)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 lookup, got %d", got)
	}
}

func TestGetExpiresAfterTTL(t *testing.T) {
	var calls int32
	c := NewCache(10*time.Millisecond, func(ctx context.Context, token string) (Session, error) {
		atomic.AddInt32(&calls, 1)
		return Session{UserID: "u1"}, nil
	})

	if _, err := c.Get(context.Background(), "tok"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(context.Background(), "tok"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected lookup after expiry, got %d calls", got)
	}
}

func TestInvalidateForcesLookup(t *testing.T) {
	var calls int32
	c := NewCache(time.Minute, func(ctx context.Context, token string) (Session, error) {
		atomic.AddInt32(&calls, 1)
		return Session{UserID: "u1"}, nil
	})

	c.Get(context.Background(), "tok")
	c.Invalidate("tok")
	c.Get(context.Background(), "tok")
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 lookups, got %d", got)
	}
}

func TestErrorNotCached(t *testing.T) {
	var calls int32
	c := NewCache(time.Minute, func(ctx context.Context, token string) (Session, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return Session{}, errors.New("backend down")
		}
		return Session{UserID: "u1"}, nil
	})

	if _, err := c.Get(context.Background(), "tok"); err == nil {
		t.Fatal("expected error")
	}
	s, err := c.Get(context.Background(), "tok")
	if err != nil || s.UserID != "u1" {
		t.Fatalf("expected recovery, got %+v %v", s, err)
	}
}

func TestCanceledStarterDoesNotPoisonFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCache(time.Minute, func(ctx context.Context, token string) (Session, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return Session{}, err
		}
		return Session{UserID: "u1"}, nil
	})

	// First caller starts the flight, then its request is canceled mid-lookup.
	ctx1, cancel1 := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx1, "tok")
		firstErr <- err
	}()
	<-started

	// Second caller joins the same in-flight lookup.
	waiter := make(chan Session, 1)
	go func() {
		s, _ := c.Get(context.Background(), "tok")
		waiter <- s
	}()
	time.Sleep(10 * time.Millisecond)

	cancel1()
	time.Sleep(10 * time.Millisecond)
	close(release)

	if s := <-waiter; s.UserID != "u1" {
		t.Fatalf("waiter inherited the starter's cancellation: %+v", s)
	}
	<-firstErr
}

func TestConcurrentGetsShareOneLookup(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := NewCache(time.Minute, func(ctx context.Context, token string) (Session, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return Session{UserID: "u1"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get(context.Background(), "tok")
		}()
	}
	// Let the goroutines pile up on the in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single shared lookup, got %d", got)
	}
}
