// bingo/models/services.go
package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// --- Stateful Services ---

type RateLimiter struct {
	Mu       sync.RWMutex
	Limiters map[string]*rate.Limiter
	LastSeen map[string]time.Time

	every  time.Duration
	burst  int
	expire time.Duration
}

// NewRateLimiter creates and starts a new per-key rate limiter. Entries idle
// for longer than expire are pruned every prune interval.
func NewRateLimiter(every time.Duration, burst int, prune, expire time.Duration) *RateLimiter {
	rl := &RateLimiter{
		Limiters: make(map[string]*rate.Limiter),
		LastSeen: make(map[string]time.Time),
		every:    every,
		burst:    burst,
		expire:   expire,
	}
	go rl.cleanup(prune)
	return rl
}

// GetLimiter retrieves or creates a rate limiter for a given key (an IP
// address in practice).
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.Mu.Lock()
	defer rl.Mu.Unlock()
	limiter, exists := rl.Limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(rl.every), rl.burst)
		rl.Limiters[key] = limiter
	}
	rl.LastSeen[key] = time.Now()
	return limiter
}

// cleanup periodically removes stale entries from the rate limiter maps.
func (rl *RateLimiter) cleanup(prune time.Duration) {
	for range time.Tick(prune) {
		rl.Mu.Lock()
		cutoff := time.Now().Add(-rl.expire)
		for key, lastSeen := range rl.LastSeen {
			if lastSeen.Before(cutoff) {
				delete(rl.Limiters, key)
				delete(rl.LastSeen, key)
			}
		}
		rl.Mu.Unlock()
	}
}

// SessionStore maps opaque bearer tokens to logged-in users. Tokens expire
// after the configured TTL.
type SessionStore struct {
	Mu       sync.RWMutex
	Sessions map[string]User

	ttl time.Duration
}

// NewSessionStore creates a new session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{Sessions: make(map[string]User), ttl: ttl}
}

// Create registers a session for user and returns its token.
func (ss *SessionStore) Create(user User) string {
	token := uuid.New().String()

	ss.Mu.Lock()
	ss.Sessions[token] = user
	ss.Mu.Unlock()

	time.AfterFunc(ss.ttl, func() {
		ss.Mu.Lock()
		delete(ss.Sessions, token)
		ss.Mu.Unlock()
	})
	return token
}

// Get resolves a token to its user.
func (ss *SessionStore) Get(token string) (User, bool) {
	ss.Mu.RLock()
	defer ss.Mu.RUnlock()
	user, ok := ss.Sessions[token]
	return user, ok
}

// Delete removes a session, logging the user out.
func (ss *SessionStore) Delete(token string) {
	ss.Mu.Lock()
	delete(ss.Sessions, token)
	ss.Mu.Unlock()
}
