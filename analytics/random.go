package analytics

import (
	"math/rand"
	"sync"
)

// RandomSource yields uniform draws in [0,1)
type RandomSource interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent use
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a concurrency-safe source seeded with seed
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// uniform maps a draw from src onto [lo, hi)
func uniform(src RandomSource, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
