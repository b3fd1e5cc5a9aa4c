// Package ratelimit throttles reads off a snapshot source so a decode pass
// run against a live filesystem or network share doesn't starve everything
// else sharing it. It wraps golang.org/x/time/rate the same way the
// reference pipeline throttles its write-side batches: an unlimited
// limiter by default, switched to a byte-budget limiter when a rate is
// configured.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Reader wraps an io.Reader, blocking each Read so the long-run average
// throughput doesn't exceed the configured rate.
type Reader struct {
	src     io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// NewReader wraps src with a token-bucket limiter admitting ratePerSecond
// bytes per second and bursts of up to burst bytes. A ratePerSecond of
// zero disables throttling entirely (the limiter is set to rate.Inf).
func NewReader(ctx context.Context, src io.Reader, ratePerSecond, burst int) *Reader {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = ratePerSecond
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Reader{
		src:     src,
		limiter: rate.NewLimiter(limit, burst),
		ctx:     ctx,
	}
}

// Read services at most one burst-sized chunk per call so WaitN never
// rejects a request for exceeding the limiter's burst size, regardless of
// how large a buffer the caller hands in.
func (r *Reader) Read(p []byte) (int, error) {
	if r.limiter.Limit() == rate.Inf {
		return r.src.Read(p)
	}

	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.src.Read(p)
	if n == 0 {
		return n, err
	}
	if waitErr := r.limiter.WaitN(r.ctx, n); waitErr != nil {
		return n, waitErr
	}
	return n, err
}
