// Package rng provides the randomness abstraction shared by combat rolls,
// loot generation, and spawn placement.
package rng

import (
	"math/rand"
	"sync"
)

// Source is the randomness provider for game systems.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// lockedSource wraps a math/rand.Rand with a mutex.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a Source seeded from the default math/rand source.
//
// Postcondition: Returns a non-nil Source safe for concurrent use.
func NewSource() Source {
	return &lockedSource{r: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeededSource returns a deterministic Source for tests.
//
// Postcondition: Two sources built from the same seed produce identical
// value sequences.
func NewSeededSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
