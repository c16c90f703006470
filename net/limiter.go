package net

import (
	"context"
	"sync/atomic"

	"go.uber.org/ratelimit"
	"golang.org/x/time/rate"
)

// RecvLimiter is a token bucket applied to one session's inbound packets.
// A session that exceeds it is slowed down: its reader waits for tokens
// instead of reading the socket.
type RecvLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewRecvLimiter allows limit packets per second with the given burst.
func NewRecvLimiter(limit int, burst int) *RecvLimiter {
	l := &RecvLimiter{}
	l.Reload(limit, burst)
	return l
}

// Wait blocks until a token is available or ctx is done.
func (l *RecvLimiter) Wait(ctx context.Context) error {
	return l.limiter.Load().Wait(ctx)
}

// Reload replaces the bucket.
func (l *RecvLimiter) Reload(limit int, burst int) {
	if burst < 1 {
		burst = 1
	}
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
}

// AcceptLimiter paces the accept loop with a leaky bucket.
type AcceptLimiter struct {
	limiter atomic.Pointer[ratelimit.Limiter]
}

// NewAcceptLimiter allows limit accepts per second. limit <= 0 means unlimited.
func NewAcceptLimiter(limit int) *AcceptLimiter {
	l := &AcceptLimiter{}
	l.Reload(limit)
	return l
}

// Take blocks until the next accept is allowed.
func (l *AcceptLimiter) Take() {
	_ = (*l.limiter.Load()).Take()
}

// Reload replaces the bucket.
func (l *AcceptLimiter) Reload(limit int) {
	var lim ratelimit.Limiter
	if limit <= 0 {
		lim = ratelimit.NewUnlimited()
	} else {
		lim = ratelimit.New(limit)
	}
	l.limiter.Store(&lim)
}
