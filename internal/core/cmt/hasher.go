package cmt

import (
	"bytes"
	"crypto/sha256"
)

// Hasher is the hash primitive used for node commitments and priorities.
type Hasher interface {
	Hash(data []byte) []byte
}

// HasherFunc adapts an ordinary function to the Hasher interface.
type HasherFunc func(data []byte) []byte

// Hash calls f(data).
func (f HasherFunc) Hash(data []byte) []byte {
	return f(data)
}

// SHA256Hasher is the default Hasher.
type SHA256Hasher struct{}

// Hash returns the 32-byte SHA-256 digest of data.
func (SHA256Hasher) Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DefaultHasher is used when no hasher option is supplied.
var DefaultHasher Hasher = SHA256Hasher{}

// HashNode computes the commitment of a node from its key and the commitments
// of its two children. The child hashes are concatenated in ascending byte
// order so the result does not depend on which side each child occupies.
// A missing child is represented by an empty slice.
func HashNode(h Hasher, key, left, right []byte) []byte {
	if bytes.Compare(left, right) > 0 {
		left, right = right, left
	}

	buf := make([]byte, 0, len(key)+len(left)+len(right))
	buf = append(buf, key...)
	buf = append(buf, left...)
	buf = append(buf, right...)
	return h.Hash(buf)
}

// DerivePriority returns the heap priority of key: the first 16 bytes of
// H(key) read as a big-endian signed 128-bit integer.
func DerivePriority(h Hasher, key []byte) Priority {
	return PriorityFromBytes(h.Hash(key))
}
