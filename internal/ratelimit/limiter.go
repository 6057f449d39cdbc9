package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrLimitExceeded is returned by Allow when a client has sent more
// than the configured number of requests in the current window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// counter tracks one client's requests inside the current window.
// Each counter carries its own mutex so clients never contend with
// each other; the Limiter's map lock is only held during lookup.
type counter struct {
	mu          sync.Mutex
	windowStart time.Time
	requests    int
}

// Limiter is a per-client-IP fixed-window request counter.
// Counters are created lazily on a client's first request and reset
// in place once the window has elapsed.
type Limiter struct {
	maxPerWindow int
	window       time.Duration
	now          func() time.Time

	mu       sync.Mutex
	counters map[string]*counter

	sweepMu      sync.Mutex
	sweepRunning bool
	sweepStop    chan struct{}
}

func New(maxPerWindow int, window time.Duration) *Limiter {
	return &Limiter{
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          time.Now,
		counters:     make(map[string]*counter),
	}
}

// Allow records one request from clientIP. It returns nil if the
// request fits in the current window, ErrLimitExceeded otherwise.
// The reset check and the increment run under the counter's own
// mutex, so concurrent requests from one IP are counted exactly.
func (l *Limiter) Allow(clientIP string) error {
	l.mu.Lock()
	c, ok := l.counters[clientIP]
	if !ok {
		c = &counter{}
		l.counters[clientIP] = c
	}
	l.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := l.now()
	if now.Sub(c.windowStart) > l.window {
		c.windowStart = now
		c.requests = 0
	}
	c.requests++
	if c.requests > l.maxPerWindow {
		return ErrLimitExceeded
	}
	return nil
}

// Size returns the number of tracked client counters.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// StartSweeper launches a background goroutine that periodically
// evicts counters whose window expired at least one full window ago.
// Without it the counter map grows with every distinct client IP.
func (l *Limiter) StartSweeper(interval time.Duration) {
	l.sweepMu.Lock()
	if l.sweepRunning {
		l.sweepMu.Unlock()
		return
	}
	l.sweepRunning = true
	l.sweepStop = make(chan struct{})
	stop := l.sweepStop
	l.sweepMu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-stop:
				return
			}
		}
	}()
}

// StopSweeper stops the background eviction goroutine.
func (l *Limiter) StopSweeper() {
	l.sweepMu.Lock()
	defer l.sweepMu.Unlock()
	if !l.sweepRunning {
		return
	}
	close(l.sweepStop)
	l.sweepRunning = false
}

// sweep removes counters idle for more than two windows. A request
// racing the eviction at worst recreates a fresh counter, which is
// the same state a window reset would have produced.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-2 * l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.counters {
		c.mu.Lock()
		stale := c.windowStart.Before(cutoff)
		c.mu.Unlock()
		if stale {
			delete(l.counters, ip)
		}
	}
}
