// Package leads turns a visitor's organization name and IP address into a
// reproducible company profile and a list of enriched decision-maker
// contacts. Every draw comes from a random stream seeded by the call's own
// inputs, so the same inputs always produce the same output and concurrent
// calls never share state.
package leads

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
)

const seedSeparator = 0x1f

// Seed hashes parts with FNV-1a, separating them with the ASCII unit
// separator so ("ab", "c") and ("a", "bc") differ.
func Seed(parts ...string) uint64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{seedSeparator})
		}
		_, _ = h.Write([]byte(p))
	}
	return h.Sum64()
}

// NewStream returns a PCG stream seeded from parts.
func NewStream(parts ...string) *rand.Rand {
	s := Seed(parts...)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// IntBetween draws uniformly from [lo, hi]. Inverted bounds collapse to lo.
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
