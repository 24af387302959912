// Package timer maps scheduled-item identifiers to live delayed-execution
// handles. Delays within a safe maximum use a one-shot timer; longer delays
// fall back to periodic polling so a runtime timer limit or clock jump can
// never silently drop a fire.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Kind tags the two handle classes. Handles are normalized to this one
// tagged shape at the storage boundary.
type Kind int

const (
	KindDirect Kind = iota
	KindPolling
)

func (k Kind) String() string {
	if k == KindPolling {
		return "polling"
	}
	return "direct"
}

type handle struct {
	kind Kind
	stop func()
}

// Registry owns the id→handle mapping exclusively. Every armed handle either
// fires exactly once or is disarmed; a fired handle removes itself.
type Registry struct {
	mu        sync.Mutex
	clk       clock.Clock
	maxDirect time.Duration
	pollEvery time.Duration
	logger    *slog.Logger
	handles   map[string]*handle
}

func New(clk clock.Clock, maxDirect, pollEvery time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		clk:       clk,
		maxDirect: maxDirect,
		pollEvery: pollEvery,
		logger:    logger,
		handles:   make(map[string]*handle),
	}
}

// Arm schedules onFire for the deadline, replacing any existing handle for
// id (the old one is disarmed first, so a replace can never double-fire).
// A deadline at or before now is not armed; Arm returns false and the caller
// is expected to complete the item immediately instead.
func (r *Registry) Arm(id string, deadline time.Time, onFire func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disarmLocked(id)

	delay := deadline.Sub(r.clk.Now())
	if delay <= 0 {
		return false
	}

	if delay <= r.maxDirect {
		h := &handle{kind: KindDirect}
		t := r.clk.AfterFunc(delay, func() { r.fire(id, h, onFire) })
		h.stop = func() { t.Stop() }
		r.handles[id] = h
		return true
	}

	h := &handle{kind: KindPolling}
	stopCh := make(chan struct{})
	var once sync.Once
	h.stop = func() { once.Do(func() { close(stopCh) }) }
	r.handles[id] = h
	go r.poll(id, h, deadline, stopCh, onFire)

	r.logger.Debug("armed polling timer for long delay",
		"id", id, "delay", delay.String(), "poll_every", r.pollEvery.String())

	return true
}

// Disarm cancels and removes the handle for id; no-op when absent.
func (r *Registry) Disarm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked(id)
}

// DisarmAll cancels every live handle; used at shutdown so no timer keeps
// the process alive.
func (r *Registry) DisarmAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.handles {
		h.stop()
		delete(r.handles, id)
	}
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// HandleKind reports the kind of the live handle for id, if any.
func (r *Registry) HandleKind(id string) (Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	if !ok {
		return 0, false
	}
	return h.kind, true
}

func (r *Registry) disarmLocked(id string) {
	if h, ok := r.handles[id]; ok {
		h.stop()
		delete(r.handles, id)
	}
}

// fire self-removes the handle and invokes the callback, unless the handle
// was replaced or disarmed in the meantime.
func (r *Registry) fire(id string, h *handle, onFire func()) {
	r.mu.Lock()
	if r.handles[id] != h {
		r.mu.Unlock()
		return
	}
	delete(r.handles, id)
	r.mu.Unlock()

	onFire()
}

func (r *Registry) poll(id string, h *handle, deadline time.Time, stopCh <-chan struct{}, onFire func()) {
	ticker := r.clk.Ticker(r.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !r.clk.Now().Before(deadline) {
				r.fire(id, h, onFire)
				return
			}
		}
	}
}
