// internal/randutil/rand.go
//
// Seeded random sources for board shuffles.
// A seed fully determines a layout, which is what makes daily boards shareable
// and shuffle tests reproducible.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand whose sequence is fixed by seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(splitmix(seed), splitmix(seed+goldenRatio64)))
}

// NewSeed draws a fresh seed from crypto/rand.
func NewSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// splitmix spreads neighbouring seeds far apart in PCG state space.
func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
