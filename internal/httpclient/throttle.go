package httpclient

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry pairs a per-host limiter with its last-use time so the
// background loop below can evict hosts that have gone quiet, the same
// shape api/middleware/ratelimit.go used per API key.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// throttle is an outbound per-host token bucket, adapted from
// api/middleware/ratelimit.go's per-identity inbound limiter: there the
// identity was an API key or client IP guarding inbound requests, here
// it is a destination host guarding outbound politeness.
type throttle struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      float64
	burst    int
}

func newThrottle(rps float64, burst int) *throttle {
	t := &throttle{
		limiters: make(map[string]*limiterEntry),
		rps:      rps,
		burst:    burst,
	}
	go t.cleanupLoop()
	return t
}

func (t *throttle) getLimiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.limiters[host]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(t.rps), t.burst)}
		t.limiters[host] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// wait blocks until host's bucket admits one request, or ctx is done.
func (t *throttle) wait(ctx context.Context, host string) error {
	return t.getLimiter(host).Wait(ctx)
}

// cleanupLoop evicts hosts unused for an hour, checked every 5 minutes.
func (t *throttle) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		t.mu.Lock()
		for host, entry := range t.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(t.limiters, host)
			}
		}
		t.mu.Unlock()
	}
}
