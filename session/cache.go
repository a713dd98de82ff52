// Package session memoizes viewer-session lookups so that every request in a
// burst does not re-validate the same token and re-read the same user row.
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const lookupTimeout = 10 * time.Second

// Session is the resolved identity for one bearer token.
type Session struct {
	UserID string
	Email  string
	Role   string
}

// LookupFunc resolves a token to a session against the authoritative source.
type LookupFunc func(ctx context.Context, token string) (Session, error)

type entry struct {
	session Session
	expires time.Time
}

// Cache memoizes lookups for a bounded TTL with at most one in-flight lookup
// per token. Failed lookups are not cached.
type Cache struct {
	ttl    time.Duration
	lookup LookupFunc
	group  singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
}

func NewCache(ttl time.Duration, lookup LookupFunc) *Cache {
	return &Cache{
		ttl:     ttl,
		lookup:  lookup,
		entries: make(map[string]entry),
	}
}

// Get returns the cached session for token, or resolves it via the lookup
// function. Concurrent calls for the same token share a single lookup.
func (c *Cache) Get(ctx context.Context, token string) (Session, error) {
	c.mu.Lock()
	if e, ok := c.entries[token]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return e.session, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(token, func() (interface{}, error) {
		// The flight is shared by every concurrent caller, so it must not die
		// with whichever request happened to start it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		s, err := c.lookup(lookupCtx, token)
		if err != nil {
			return Session{}, err
		}
		c.mu.Lock()
		c.entries[token] = entry{session: s, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return Session{}, err
	}
	return v.(Session), nil
}

// Invalidate drops the cached session for token, forcing the next Get to hit
// the authoritative source. Used on logout and profile updates.
func (c *Cache) Invalidate(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}
