package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a limiter has no tokens left.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Name identifies the limiter in logs.
	Name string
	// Rate is the number of tokens added per second.
	Rate float64
	// Burst is the bucket size.
	Burst int
	// OnLimit is called when a request is turned away.
	OnLimit func(name string)
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// PerMinute returns a config that allows n requests per minute with a burst of n.
func PerMinute(name string, n int) RateLimiterConfig {
	return RateLimiterConfig{Name: name, Rate: float64(n) / 60, Burst: n}
}

func (c *RateLimiterConfig) applyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 10
	}
	if c.Burst <= 0 {
		c.Burst = max(int(c.Rate), 1)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// RateLimiter is a token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config.applyDefaults()
	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: config.Now(),
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	if rl.config.OnLimit != nil {
		rl.config.OnLimit(rl.config.Name)
	}
	return false
}

// Execute runs fn if a token is available, otherwise returns ErrRateLimited.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// RetryAfter returns how long until the next token is available.
func (rl *RateLimiter) RetryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
}

// full reports whether the bucket has refilled completely.
func (rl *RateLimiter) full() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens >= float64(rl.config.Burst)
}

func (rl *RateLimiter) refill() {
	now := rl.config.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now
	if elapsed <= 0 {
		return
	}
	rl.tokens = min(rl.tokens+elapsed*rl.config.Rate, float64(rl.config.Burst))
}

// KeyedRateLimiter keeps one token bucket per key, such as a client IP.
// Buckets that have refilled completely are dropped on the next sweep.
type KeyedRateLimiter struct {
	config        RateLimiterConfig
	sweepInterval time.Duration

	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	lastSweep time.Time
}

// NewKeyedRateLimiter creates a limiter with a bucket per key built from config.
func NewKeyedRateLimiter(config RateLimiterConfig) *KeyedRateLimiter {
	config.applyDefaults()
	return &KeyedRateLimiter{
		config:        config,
		sweepInterval: time.Minute,
		limiters:      make(map[string]*RateLimiter),
		lastSweep:     config.Now(),
	}
}

// Allow takes one token from the bucket for key.
func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// RetryAfter returns how long until key has a token again.
func (k *KeyedRateLimiter) RetryAfter(key string) time.Duration {
	return k.limiter(key).RetryAfter()
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *KeyedRateLimiter) limiter(key string) *RateLimiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now := k.config.Now(); now.Sub(k.lastSweep) >= k.sweepInterval {
		k.lastSweep = now
		for name, rl := range k.limiters {
			if name != key && rl.full() {
				delete(k.limiters, name)
			}
		}
	}

	rl, ok := k.limiters[key]
	if !ok {
		cfg := k.config
		cfg.Name = k.config.Name + ":" + key
		rl = NewRateLimiter(cfg)
		k.limiters[key] = rl
	}
	return rl
}
