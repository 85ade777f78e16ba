// Package ratelimit implements per-client fixed-window admission control.
//
// Counters live in a bounded LRU whose entries expire one window after they
// were opened, so clients that stop calling are forgotten and the number of
// tracked clients never exceeds the configured capacity.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultLimit    = 10
	DefaultWindow   = 15 * time.Minute
	DefaultCapacity = 10000

	// UnknownClient is the key used when a request carries no client address.
	UnknownClient = "unknown"
)

// Config controls the limiter policy.
type Config struct {
	Limit    int
	Window   time.Duration
	Capacity int
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds. Denied
// decisions always report at least one second.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per client identifier.
type Limiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	entries *expirable.LRU[string, *window]
}

// New creates a limiter. Zero config values fall back to the defaults.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	return &Limiter{
		limit:   cfg.Limit,
		window:  cfg.Window,
		entries: expirable.NewLRU[string, *window](cfg.Capacity, nil, cfg.Window),
	}
}

// Admit records a request from clientID at now and reports whether it may
// proceed. Denied requests do not count against the window.
func (l *Limiter) Admit(clientID string, now time.Time) Decision {
	if clientID == "" {
		clientID = UnknownClient
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries.Get(clientID)
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.window)}
		l.entries.Add(clientID, w)
		return l.decision(true, w, now)
	}

	if w.count >= l.limit {
		return l.decision(false, w, now)
	}

	w.count++
	return l.decision(true, w, now)
}

func (l *Limiter) decision(allowed bool, w *window, now time.Time) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: l.limit - w.count,
		ResetAt:   w.resetAt,
	}
	if !allowed {
		d.RetryAfter = w.resetAt.Sub(now)
	}
	return d
}

// Limit returns the per-window quota.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Len returns the number of clients currently tracked.
func (l *Limiter) Len() int {
	return l.entries.Len()
}
