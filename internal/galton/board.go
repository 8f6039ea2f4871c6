// Package galton simulates balls falling through a Galton board.
package galton

import (
	"math/bits"
	"math/rand/v2"
)

// Board drops balls through rows of pegs. Each peg deflects a ball left or
// right with equal probability. A Board owns its generator and is not safe
// for concurrent use.
type Board struct {
	rng *rand.Rand
}

// NewBoard returns a Board whose generator is seeded once with seed.
// Two boards built from the same seed produce the same sequence of drops.
func NewBoard(seed uint64) *Board {
	return &Board{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Drop sends one ball through n rows and returns the number of right
// deflections, a value in [0, n]. n <= 0 returns 0 without consuming
// randomness.
func (b *Board) Drop(n int) int {
	row := 0
	for n >= 64 {
		row += bits.OnesCount64(b.rng.Uint64())
		n -= 64
	}
	if n > 0 {
		// Keep the low n bits: n more fair coin flips.
		row += bits.OnesCount64(b.rng.Uint64() & (1<<uint(n) - 1))
	}
	return row
}
