// Package randutil provides the seedable random source shared by the mock
// extraction strategies.
package randutil

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the subset of *rand.Rand the strategies draw from.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0,1.0).
	Float64() float64
}

// LockedRand is a Source safe for concurrent searches.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a LockedRand seeded with seed. A zero seed uses the wall clock.
func New(seed uint64) *LockedRand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &LockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 implements Source.
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	v := l.r.Float64()
	l.mu.Unlock()
	return v
}
