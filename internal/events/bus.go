// Package events is a minimal typed publish/subscribe bus. Listener
// isolation lives in the publish primitive itself: a panicking listener is
// logged and the remaining listeners still run.
package events

import (
	"log/slog"
	"sync"
)

type Bus[T any] struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	handlers []func(T)
}

func NewBus[T any](logger *slog.Logger) *Bus[T] {
	return &Bus[T]{logger: logger}
}

// Subscribe registers a listener. Listeners run synchronously on Publish,
// in registration order.
func (b *Bus[T]) Subscribe(fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Publish delivers payload to every listener. A panic in one listener never
// prevents the others from running, nor propagates to the publisher.
func (b *Bus[T]) Publish(payload T) {
	b.mu.RLock()
	handlers := make([]func(T), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.invoke(fn, payload)
	}
}

func (b *Bus[T]) invoke(fn func(T), payload T) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener failed", "panic", r)
		}
	}()
	fn(payload)
}
