// Package rate paces outbound requests to the upstream LLM API. The leaky
// bucket smooths bursts of concurrent asks into an even request stream, with
// a small buffered channel allowing brief bursts.
package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

type Limiter struct {
	ch    chan struct{}
	l     ratelimit.Limiter
	limit int
}

// New builds a limiter allowing limit requests per second. The burst buffer
// is 10% of the limit, at least one.
func New(ctx context.Context, limit int) *Limiter {
	burst := limit / 10
	if burst < 1 {
		burst = 1
	}
	lim := &Limiter{
		limit: limit,
		ch:    make(chan struct{}, burst),
		l:     ratelimit.New(limit),
	}
	go lim.provider(ctx)
	return lim
}

func (l *Limiter) provider(ctx context.Context) {
	defer close(l.ch)
	for {
		l.l.Take()
		select {
		case <-ctx.Done():
			return
		case l.ch <- struct{}{}:
		}
	}
}

// Take blocks until a slot is available. After shutdown the channel is
// closed and Take returns immediately.
func (l *Limiter) Take() {
	<-l.ch
}

func (l *Limiter) Chan() <-chan struct{} {
	return l.ch
}
