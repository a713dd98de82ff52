// Package badge keeps per-user unread counts fresh. A single idempotent
// recompute serves both the fixed-interval poll and event-driven kicks, so
// redundant triggers converge on the same stored value (last write wins).
package badge

import (
	"context"
	"log"
	"sync"
	"time"
)

// CountFunc recomputes the unread total for one user from the source of
// truth.
type CountFunc func(ctx context.Context, userID string) (int64, error)

// StoreFunc publishes a recomputed count.
type StoreFunc func(ctx context.Context, userID string, count int64) error

type Refresher struct {
	interval time.Duration
	count    CountFunc
	store    StoreFunc
	kicks    chan string

	mu      sync.Mutex
	watched map[string]bool
}

func NewRefresher(interval time.Duration, count CountFunc, store StoreFunc) *Refresher {
	return &Refresher{
		interval: interval,
		count:    count,
		store:    store,
		kicks:    make(chan string, 64),
		watched:  make(map[string]bool),
	}
}

// Watch starts periodic refreshes for a user, typically on realtime connect.
func (r *Refresher) Watch(userID string) {
	r.mu.Lock()
	r.watched[userID] = true
	r.mu.Unlock()
}

// Unwatch stops periodic refreshes for a user.
func (r *Refresher) Unwatch(userID string) {
	r.mu.Lock()
	delete(r.watched, userID)
	r.mu.Unlock()
}

// Kick requests an immediate refresh for a user, e.g. after a message write.
// Safe to call redundantly; drops the request if the queue is full since the
// next poll covers it.
func (r *Refresher) Kick(userID string) {
	select {
	case r.kicks <- userID:
	default:
	}
}

// Run services the poll ticker and kick queue until ctx is done. Refreshes
// after cancellation are suppressed, so no state is written past shutdown.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case userID := <-r.kicks:
			r.refresh(ctx, userID)
		case <-ticker.C:
			for _, userID := range r.watchedIDs() {
				if ctx.Err() != nil {
					return
				}
				r.refresh(ctx, userID)
			}
		}
	}
}

func (r *Refresher) watchedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.watched))
	for id := range r.watched {
		out = append(out, id)
	}
	return out
}

func (r *Refresher) refresh(ctx context.Context, userID string) {
	if ctx.Err() != nil {
		return
	}
	n, err := r.count(ctx, userID)
	if err != nil {
		log.Printf("badge recount failed for user %s: %v", userID, err)
		return
	}
	if err := r.store(ctx, userID, n); err != nil {
		log.Printf("badge store failed for user %s: %v", userID, err)
	}
}
