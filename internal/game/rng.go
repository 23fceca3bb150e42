package game

import (
	"math/rand"
	"time"
)

// Random is the single source of randomness for shuffles, AI choices,
// theme picks and collapse rolls. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// NewRandom returns a seeded generator. A zero seed uses the clock.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
