package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// System provides deterministic random numbers for poker operations.
// The generator is an AES-256 block cipher in counter mode keyed by a 32-byte
// seed: the same seed always produces the same stream, which is what makes
// every shuffle replayable from the hand's derived seed.
type System struct {
	cipher  cipher.Block
	counter uint64
}

// NewSystem creates an RNG keyed by the given seed
func NewSystem(seed Seed) (*System, error) {
	block, err := aes.NewCipher(seed.Bytes[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return &System{cipher: block}, nil
}

// RandomUint64 returns the next value of the keystream
func (s *System) RandomUint64() uint64 {
	var counterBytes [16]byte
	binary.BigEndian.PutUint64(counterBytes[:8], s.counter)
	s.counter++

	var output [16]byte
	s.cipher.Encrypt(output[:], counterBytes[:])

	return binary.BigEndian.Uint64(output[:8])
}

// RandomInt returns a random int in range [0, max)
func (s *System) RandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	// Rejection sampling keeps the draw uniform without breaking determinism.
	bound := uint64(max)
	limit := (^uint64(0) / bound) * bound
	for {
		v := s.RandomUint64()
		if v < limit {
			return int(v % bound)
		}
	}
}

// Shuffle permutes the slice in place with a Fisher-Yates walk.
// Empty and singleton slices are no-ops.
func Shuffle[T any](s *System, slice []T) {
	for i := len(slice) - 1; i > 0; i-- {
		j := s.RandomInt(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}
