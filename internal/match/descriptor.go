package match

import (
	"errors"
	"fmt"
	"math"
)

// VectorLength is the fixed dimensionality of a face descriptor. The client
// capture model emits 128-element vectors; anything else is rejected at the
// boundary.
const VectorLength = 128

// ErrInvalidDescriptor is returned when a value claimed to be a descriptor
// has the wrong length, contains non-finite components, or the enrollment
// set is empty.
var ErrInvalidDescriptor = errors.New("invalid descriptor format")

// Descriptor is a fixed-length face feature vector produced by an external
// recognition model.
type Descriptor [VectorLength]float64

// ParseProbe converts a decoded probe payload into a [Descriptor]. Length
// must be exactly [VectorLength] and every component must be a finite number.
func ParseProbe(values []float64) (Descriptor, error) {
	var d Descriptor
	if len(values) != VectorLength {
		return d, fmt.Errorf("%w: expected %d components, got %d", ErrInvalidDescriptor, VectorLength, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return d, fmt.Errorf("%w: non-finite component at index %d", ErrInvalidDescriptor, i)
		}
		d[i] = v
	}
	return d, nil
}

// ParseSet converts a decoded enrollment payload into a descriptor set.
// The set must contain at least one vector and every vector must parse.
func ParseSet(vectors [][]float64) ([]Descriptor, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty descriptor set", ErrInvalidDescriptor)
	}
	set := make([]Descriptor, 0, len(vectors))
	for i, values := range vectors {
		d, err := ParseProbe(values)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
		set = append(set, d)
	}
	return set, nil
}
