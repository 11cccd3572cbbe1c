// Package similarity provides the brute-force cosine ranking shared by the
// in-process vector index backends.
package similarity

import (
	"math"
	"sort"
)

// CosineDistance returns 1 - cosine similarity of a and b, in [0, 2].
// Mismatched lengths or zero vectors carry no direction and get the
// orthogonal distance of 1: they rank after positively correlated matches
// and before anti-correlated ones.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Candidate is a scored record awaiting ranking.
type Candidate struct {
	Index    int
	Distance float64
}

// TopK sorts candidates by ascending distance and returns at most k of them.
// Ties keep insertion order.
func TopK(candidates []Candidate, k int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if k >= 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
