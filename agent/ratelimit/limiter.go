// Package ratelimit provides an optional, client-side throttle an Agent may
// consult before opening a new provider stream. It is ambient — distinct
// from the HTTP retry/backoff layer, which stays an external collaborator —
// and is off by default.
package ratelimit

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Config configures a token-bucket Limiter.
type Config struct {
	// RequestsPerSecond is the sustained rate the bucket refills at.
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed through
	// instantaneously before the bucket runs dry.
	Burst int
}

// Stats reports cumulative counters for a Limiter, useful for logging and
// dashboards.
type Stats struct {
	Allowed int64
	Waited  int64
	Denied  int64
}

// Limiter is the interface an Agent consults before opening a stream. An
// Agent with no limiter configured uses NoLimit, so call sites need no nil
// check. A zero TokenBucket is not usable; build one with NewTokenBucket.
type Limiter interface {
	// Allow reports whether a request may proceed right now, without blocking.
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done.
	Wait(ctx context.Context) error
	// Statistics returns a snapshot of cumulative counters.
	Statistics() Stats
}

// TokenBucket is a Limiter backed by golang.org/x/time/rate.
type TokenBucket struct {
	limiter *rate.Limiter

	allowed int64
	waited  int64
	denied  int64
}

// NewTokenBucket builds a TokenBucket from cfg.
func NewTokenBucket(cfg Config) *TokenBucket {
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Allow implements Limiter.
func (t *TokenBucket) Allow() bool {
	ok := t.limiter.Allow()
	if ok {
		atomic.AddInt64(&t.allowed, 1)
	} else {
		atomic.AddInt64(&t.denied, 1)
	}
	return ok
}

// Wait implements Limiter.
func (t *TokenBucket) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		atomic.AddInt64(&t.denied, 1)
		return err
	}
	atomic.AddInt64(&t.waited, 1)
	return nil
}

// Statistics implements Limiter.
func (t *TokenBucket) Statistics() Stats {
	return Stats{
		Allowed: atomic.LoadInt64(&t.allowed),
		Waited:  atomic.LoadInt64(&t.waited),
		Denied:  atomic.LoadInt64(&t.denied),
	}
}

// unlimited is the Limiter an Agent uses when no rate limiting is
// configured: every call succeeds immediately.
type unlimited struct{}

func (unlimited) Allow() bool                    { return true }
func (unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (unlimited) Statistics() Stats              { return Stats{} }

// NoLimit returns a Limiter that never throttles, for use as an Agent's
// default.
func NoLimit() Limiter { return unlimited{} }
