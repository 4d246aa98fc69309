// Package random provides the uniform choice capability used when picking
// loadouts, skins, chromas, levels, buddies and expressions.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Chooser returns a uniformly distributed index in [0, n). n is always > 0.
type Chooser interface {
	Intn(n int) int
}

// Pick returns a uniformly chosen element of items, or false when items is empty.
func Pick[T any](c Chooser, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[c.Intn(len(items))], true
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

type source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Chooser backed by a PCG generator seeded from crypto/rand.
// It is safe for concurrent use.
func New() (Chooser, error) {
	hi, err := NewSeed()
	if err != nil {
		return nil, err
	}
	lo, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(hi, lo), nil
}

// NewSeeded returns a Chooser with a fixed seed.
func NewSeeded(seed1, seed2 uint64) Chooser {
	return &source{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Sequence replays scripted indices, wrapping each one into range. Once the
// script runs out every call returns 0.
type Sequence struct {
	mu   sync.Mutex
	next []int
}

func NewSequence(indices ...int) *Sequence {
	return &Sequence{next: indices}
}

func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.next) == 0 {
		return 0
	}
	i := s.next[0]
	s.next = s.next[1:]
	return ((i % n) + n) % n
}
