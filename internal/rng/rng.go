package rng

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	mrand "math/rand/v2"
)

// ErrEmptyRange is returned when a draw is requested over zero buckets.
var ErrEmptyRange = errors.New("rng: n must be positive")

// Source abstracts random number generation for deterministic testing.
type Source interface {
	// IntN returns a uniformly distributed int in [0, n).
	IntN(n int) (int, error)
}

// Crypto draws from crypto/rand. A nil Reader means rand.Reader.
type Crypto struct {
	Reader io.Reader
}

func (c Crypto) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	r := c.Reader
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Seeded is a reproducible PCG-backed source, used by simulations and tests.
type Seeded struct {
	r *mrand.Rand
}

func NewSeeded(seed1, seed2 uint64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(seed1, seed2))}
}

func (s *Seeded) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	return s.r.IntN(n), nil
}
