package tracker

import (
	"math/rand"
	"time"
)

// Source supplies every random draw the generator and the quota enforcer
// make (hour selection, durations, gaps). Keeping it behind an interface lets
// tests inject fixed sequences and assert exact output.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a math/rand backed source.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a deterministic source for tests.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}
