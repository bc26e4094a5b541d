package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local fixed-window limiter. A window opens on the first
// consumption for a key and its points replenish once the window has elapsed.
// Counters do not survive a restart and are not shared between processes.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter starts a limiter whose background sweeper drops expired windows
// every sweepEvery. Close stops the sweeper.
func NewMemoryLimiter(sweepEvery time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	go l.sweep(sweepEvery)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, p Policy, key string) (Decision, error) {
	p = Normalize(p)
	if p.Limit <= 0 {
		return Decision{Allowed: true, Limit: p.Limit, Remaining: p.Limit}, nil
	}

	k := p.Name + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[k]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(p.Window)}
		l.windows[k] = w
	}

	w.count++

	d := Decision{
		Allowed:   w.count <= p.Limit,
		Limit:     p.Limit,
		Remaining: max(0, p.Limit-w.count),
		ResetAt:   w.resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = w.resetAt.Sub(now)
	}
	return d, nil
}

// Close stops the sweeper. Safe to call more than once.
func (l *MemoryLimiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	return nil
}

func (l *MemoryLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.purgeExpired()
		}
	}
}

func (l *MemoryLimiter) purgeExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
}
