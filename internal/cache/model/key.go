package model

import (
	"sync"
	"unsafe"

	"github.com/zeebo/xxh3"
)

// Key is a 128-bit xxh3 fingerprint of the raw cache key. The 64-bit value
// indexes the map; hi/lo guard against collisions.
type Key struct {
	v  uint64
	hi uint64
	lo uint64
}

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

func NewKey(key string) *Key {
	return buildKey(unsafe.Slice(unsafe.StringData(key), len(key)))
}

func buildKey(key []byte) *Key {
	hasher := hasherPool.Get().(*xxh3.Hasher)
	hasher.Reset()

	_, _ = hasher.Write(key)
	u128 := hasher.Sum128()

	k := &Key{
		v:  hasher.Sum64(),
		hi: u128.Hi,
		lo: u128.Lo,
	}

	hasherPool.Put(hasher)

	return k
}

func (k *Key) Value() uint64 {
	return k.v
}

func (k *Key) IsTheSame(key *Key) (same bool) {
	return k.v == key.v && k.hi == key.hi && k.lo == key.lo
}
