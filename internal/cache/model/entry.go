package model

import (
	"slices"
	"time"
)

// Entry is a single cached response. All fields are guarded by the owning
// store's lock; entries are never shared outside it.
type Entry struct {
	key         *Key
	raw         string
	payload     []byte
	tags        []string
	createdAt   time.Time
	touchedAt   time.Time
	accessCount int64
	ttl         time.Duration // 0 means no expiry
}

func NewEntry(raw string, payload []byte, ttl time.Duration, tags []string, now time.Time) *Entry {
	return &Entry{
		key:       NewKey(raw),
		raw:       raw,
		payload:   payload,
		tags:      tags,
		createdAt: now,
		touchedAt: now,
		ttl:       ttl,
	}
}

// NewRestoredEntry rebuilds an entry from a snapshot, keeping its original
// creation time so the TTL clock is not reset by a restart.
func NewRestoredEntry(raw string, payload []byte, ttl time.Duration, createdAt time.Time) *Entry {
	return &Entry{
		key:       NewKey(raw),
		raw:       raw,
		payload:   payload,
		createdAt: createdAt,
		touchedAt: createdAt,
		ttl:       ttl,
	}
}

func (e *Entry) Key() *Key {
	if e == nil {
		return nil
	}
	return e.key
}

func (e *Entry) RawKey() string     { return e.raw }
func (e *Entry) Payload() []byte    { return e.payload }
func (e *Entry) TTL() time.Duration { return e.ttl }

func (e *Entry) CreatedAt() time.Time { return e.createdAt }
func (e *Entry) TouchedAt() time.Time { return e.touchedAt }
func (e *Entry) AccessCount() int64   { return e.accessCount }

// Touch records a successful read.
func (e *Entry) Touch(now time.Time) {
	e.touchedAt = now
	e.accessCount++
}

// Weight is the estimated memory footprint of the payload, fixed at insertion.
func (e *Entry) Weight() int64 {
	return int64(len(e.payload))
}

// IsExpiredAt reports whether the entry's lifetime elapsed by now.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	if e == nil || e.ttl == 0 {
		return false
	}
	return now.Sub(e.createdAt) > e.ttl
}

// ExpiresAt returns the expiry deadline and whether one exists.
func (e *Entry) ExpiresAt() (time.Time, bool) {
	if e.ttl == 0 {
		return time.Time{}, false
	}
	return e.createdAt.Add(e.ttl), true
}

func (e *Entry) HasTag(tag string) bool {
	return slices.Contains(e.tags, tag)
}
