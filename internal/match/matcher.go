package match

import "math"

// Distance returns the Euclidean distance between two descriptors.
func Distance(a, b Descriptor) float64 {
	var sum float64
	for i := 0; i < VectorLength; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Best returns the minimum distance between probe and any candidate, and the
// index of the winning candidate. With no candidates it returns
// (math.MaxFloat64, -1); the caller decides what an empty set means.
func Best(probe Descriptor, candidates []Descriptor) (float64, int) {
	minDistance := math.MaxFloat64
	winner := -1
	for i := range candidates {
		if d := Distance(probe, candidates[i]); d < minDistance {
			minDistance = d
			winner = i
		}
	}
	return minDistance, winner
}

// Match reduces a candidate set to the decision pair (minDistance, matched).
// matched is false when the set is empty.
func Match(probe Descriptor, candidates []Descriptor, threshold float64) (float64, bool) {
	minDistance, winner := Best(probe, candidates)
	return minDistance, winner >= 0 && minDistance <= threshold
}
