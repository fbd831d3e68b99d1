// Package random provides the process-wide pseudo-random source used for
// role shuffles, word picks and identifier generation.
package random

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source is safe for concurrent use. It is seeded once and shared, so that
// concurrent requests never draw from correlated generators.
type Source struct {
	mu     sync.Mutex
	chacha *rand.ChaCha8
	rng    *rand.Rand
}

func New(seed [32]byte) *Source {
	c := rand.NewChaCha8(seed)
	return &Source{chacha: c, rng: rand.New(c)}
}

// NewSeeded seeds a Source from the operating system's entropy pool.
func NewSeeded() (*Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("seed random source: %w", err)
	}
	return New(seed), nil
}

// IntN returns a uniform int in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Read fills p with random bytes. It always returns len(p), nil.
func (s *Source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chacha.Read(p)
}
