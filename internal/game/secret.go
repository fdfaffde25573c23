package game

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// DefaultMaxRejections bounds consecutive duplicate draws before the
// random source is considered broken.
const DefaultMaxRejections = 1000

// Rand is the randomness the generator needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a ChaCha8-backed source. Seed 0 picks a fresh seed.
func NewRand(seed uint64) *mrand.Rand {
	var s [32]byte
	if seed == 0 {
		_, _ = rand.Read(s[:])
	} else {
		binary.LittleEndian.PutUint64(s[:], seed)
	}
	return mrand.New(mrand.NewChaCha8(s))
}

// GenerateSecret draws digits until four distinct ones are collected, in draw
// order. It gives up with ErrRandomSourceExhausted after more than
// maxRejections consecutive unusable draws.
func GenerateSecret(rng Rand, maxRejections int) (Code, error) {
	if maxRejections <= 0 {
		maxRejections = DefaultMaxRejections
	}

	var (
		code     Code
		used     [10]bool
		rejected int
	)
	for i := 0; i < CodeLen; {
		d := rng.IntN(10)
		if d < 0 || d > 9 || used[d] {
			rejected++
			if rejected > maxRejections {
				return Code{}, ErrRandomSourceExhausted
			}
			continue
		}
		used[d] = true
		code[i] = uint8(d)
		rejected = 0
		i++
	}
	return code, nil
}
