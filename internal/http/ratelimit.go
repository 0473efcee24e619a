package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Write throttling. Only POSTs are limited (see withSecurityHeaders); a
// single person entering expenses never gets near this, so anything over
// the limit is scripted.
const (
	writeLimit      = 30
	writeWindow     = time.Minute
	staleClientAge  = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// rateLimiter counts recent writes per client IP in memory.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientWindow
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// clientWindow tracks one IP's writes inside the current window.
type clientWindow struct {
	windowStart time.Time
	writes      int
	lastSeen    time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.runCleanup()
	return rl
}

// runCleanup periodically drops IPs that have gone quiet so the map stays
// bounded.
func (rl *rateLimiter) runCleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStaleClients()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) dropStaleClients() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleClientAge)
	for ip, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop shuts down the cleanup goroutine.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

// allow reports whether a write from clientIP fits within the current
// window, counting a rate-limit hit in metrics when it does not.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.windowStart) > writeWindow {
		rl.clients[clientIP] = &clientWindow{
			windowStart: now,
			writes:      1,
			lastSeen:    now,
		}
		return true
	}

	client.writes++
	client.lastSeen = now

	if client.writes > writeLimit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
