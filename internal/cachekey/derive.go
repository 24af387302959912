// Package cachekey derives stable cache keys from conversation transcripts.
package cachekey

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/plexcord/plexcord/model"
)

// Derive fingerprints an ordered turn sequence into a fixed-length hex key.
// Identical sequences always produce identical keys; any change of content,
// role or ordering changes the key. Empty input yields "", which callers
// treat as "skip caching" rather than an error.
//
// Serialization is length-prefixed so that field boundaries are unambiguous:
// ("ab","c") can never collide with ("a","bc").
func Derive(conv model.Conversation) string {
	if len(conv) == 0 {
		return ""
	}

	h := sha256.New()
	var lenBuf [8]byte

	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(conv)))
	_, _ = h.Write(lenBuf[:])

	for _, turn := range conv {
		writeField(h, lenBuf[:], turn.Role)
		writeField(h, lenBuf[:], turn.Content)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, lenBuf []byte, field string) {
	binary.BigEndian.PutUint64(lenBuf, uint64(len(field)))
	_, _ = h.Write(lenBuf)
	_, _ = h.Write([]byte(field))
}
