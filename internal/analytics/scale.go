package analytics

import (
	"fmt"
)

// Unclassified is the label assigned when a value falls outside a scale's
// configured range. Out-of-range input is a caller-side data problem; it is
// reported explicitly instead of being clamped into the nearest bin.
const Unclassified = "Unclassified"

// OrdinalScale maps a continuous value onto an ordinal label through an
// explicit, ordered list of bin edges. Bins are half-open on the lower bound
// ([edges[i], edges[i+1]) -> labels[i]) except the final bin, which also
// includes its upper edge so the top of the range classifies.
type OrdinalScale struct {
	edges  []float64
	labels []string
}

// NewOrdinalScale builds a scale from ascending edges and their bin labels.
// It requires len(edges) == len(labels)+1, at least one bin, strictly
// increasing edges, and non-empty labels.
func NewOrdinalScale(edges []float64, labels []string) (*OrdinalScale, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("scale needs at least one bin")
	}
	if len(edges) != len(labels)+1 {
		return nil, fmt.Errorf("scale needs len(labels)+1 edges, got %d edges for %d labels",
			len(edges), len(labels))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("scale edges must be strictly increasing, got %.4f after %.4f",
				edges[i], edges[i-1])
		}
	}
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("scale label %d is empty", i)
		}
	}
	return &OrdinalScale{
		edges:  append([]float64(nil), edges...),
		labels: append([]string(nil), labels...),
	}, nil
}

// Classify returns the label of the bin containing v. The second return is
// false, with the Unclassified label, when v lies outside
// [edges[0], edges[len-1]].
func (s *OrdinalScale) Classify(v float64) (string, bool) {
	last := len(s.edges) - 1
	if v < s.edges[0] || v > s.edges[last] {
		return Unclassified, false
	}
	if v == s.edges[last] {
		return s.labels[len(s.labels)-1], true
	}
	for i := 1; i <= last; i++ {
		if v < s.edges[i] {
			return s.labels[i-1], true
		}
	}
	// Unreachable: v <= edges[last] is handled above.
	return Unclassified, false
}

// Labels returns the bin labels in ascending bin order.
func (s *OrdinalScale) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Edges returns the bin edges in ascending order.
func (s *OrdinalScale) Edges() []float64 {
	return append([]float64(nil), s.edges...)
}
