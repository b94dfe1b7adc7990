package leads

import "math/rand/v2"

// SampleCount draws the number of items to take from a pool of n. The count
// is uniform over [minCount, max(minCount, min(maxCount, n))] and never
// exceeds n.
func SampleCount(r *rand.Rand, n, minCount, maxCount int) int {
	minCount = max(minCount, 0)
	maxCount = max(maxCount, minCount)

	upper := max(minCount, min(maxCount, n))
	k := IntBetween(r, minCount, upper)
	return min(k, n)
}

// Sample returns between minCount and maxCount distinct items of items, in
// draw order. The input slice is not modified.
func Sample[T any](items []T, r *rand.Rand, minCount, maxCount int) []T {
	k := SampleCount(r, len(items), minCount, maxCount)
	if k == 0 {
		return []T{}
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}

	// Partial Fisher-Yates: the first k slots become the sample.
	out := make([]T, k)
	for i := range k {
		j := i + r.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = items[idx[i]]
	}
	return out
}
