package cmt

import (
	"encoding/binary"
	"math"
	"math/big"
)

// PrioritySize is the width of a priority in bytes.
const PrioritySize = 16

// Priority is a signed 128-bit integer stored as two's complement halves.
type Priority struct {
	Hi int64
	Lo uint64
}

// MinPriority is the smallest representable priority. Removal forces the
// target node to it before rotating the node down to a leaf.
var MinPriority = Priority{Hi: math.MinInt64, Lo: 0}

// MaxPriority is the largest representable priority.
var MaxPriority = Priority{Hi: math.MaxInt64, Lo: math.MaxUint64}

// PriorityFromBytes reads the first 16 bytes of b as a big-endian signed
// integer. Shorter inputs are right-padded with zeros.
func PriorityFromBytes(b []byte) Priority {
	var buf [PrioritySize]byte
	copy(buf[:], b)
	return Priority{
		Hi: int64(binary.BigEndian.Uint64(buf[:8])),
		Lo: binary.BigEndian.Uint64(buf[8:]),
	}
}

// Cmp returns -1, 0 or +1 depending on whether p is less than, equal to or
// greater than q.
func (p Priority) Cmp(q Priority) int {
	switch {
	case p.Hi < q.Hi:
		return -1
	case p.Hi > q.Hi:
		return 1
	case p.Lo < q.Lo:
		return -1
	case p.Lo > q.Lo:
		return 1
	default:
		return 0
	}
}

// Bytes returns the 16-byte big-endian encoding of p.
func (p Priority) Bytes() []byte {
	out := make([]byte, PrioritySize)
	binary.BigEndian.PutUint64(out[:8], uint64(p.Hi))
	binary.BigEndian.PutUint64(out[8:], p.Lo)
	return out
}

// Big returns p as a big.Int.
func (p Priority) Big() *big.Int {
	v := new(big.Int).SetInt64(p.Hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(p.Lo))
}

// String returns the decimal representation of p.
func (p Priority) String() string {
	return p.Big().String()
}
