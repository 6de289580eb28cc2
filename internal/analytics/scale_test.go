package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrdinalScale(t *testing.T) {
	tests := []struct {
		name    string
		edges   []float64
		labels  []string
		wantErr string
	}{
		{
			name:   "valid quality scale",
			edges:  []float64{0, 20, 30, 40, 100},
			labels: []string{"Poor", "Average", "Good", "Excellent"},
		},
		{
			name:   "valid single bin",
			edges:  []float64{0, 100},
			labels: []string{"All"},
		},
		{
			name:    "no labels",
			edges:   []float64{0, 100},
			labels:  []string{},
			wantErr: "at least one bin",
		},
		{
			name:    "edge count mismatch",
			edges:   []float64{0, 20, 100},
			labels:  []string{"Low"},
			wantErr: "len(labels)+1 edges",
		},
		{
			name:    "non-increasing edges",
			edges:   []float64{0, 30, 30, 100},
			labels:  []string{"A", "B", "C"},
			wantErr: "strictly increasing",
		},
		{
			name:    "descending edges",
			edges:   []float64{100, 40, 0},
			labels:  []string{"High", "Low"},
			wantErr: "strictly increasing",
		},
		{
			name:    "empty label",
			edges:   []float64{0, 50, 100},
			labels:  []string{"Low", ""},
			wantErr: "label 1 is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, err := NewOrdinalScale(tt.edges, tt.labels)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.edges, scale.Edges())
			assert.Equal(t, tt.labels, scale.Labels())
		})
	}
}

func TestOrdinalScaleClassify(t *testing.T) {
	scale, err := NewOrdinalScale(
		[]float64{0, 20, 30, 40, 100},
		[]string{"Poor", "Average", "Good", "Excellent"},
	)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value float64
		label string
		ok    bool
	}{
		{"lower edge of first bin", 0, "Poor", true},
		{"inside first bin", 19.999, "Poor", true},
		{"lower edge of second bin", 20, "Average", true},
		{"inside third bin", 35, "Good", true},
		{"lower edge of last bin", 40, "Excellent", true},
		{"upper edge of last bin", 100, "Excellent", true},
		{"below range", -0.001, Unclassified, false},
		{"above range", 100.001, Unclassified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := scale.Classify(tt.value)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// Every in-range value maps to exactly one label: the bins partition the
// configured range with no gaps and no overlaps.
func TestOrdinalScalePartitionsRange(t *testing.T) {
	scale, err := NewOrdinalScale(
		[]float64{0, 20, 35, 100},
		[]string{"Low Risk", "Medium Risk", "High Risk"},
	)
	require.NoError(t, err)

	for v := 0.0; v <= 100.0; v += 0.25 {
		label, ok := scale.Classify(v)
		require.True(t, ok, "value %.2f fell outside every bin", v)
		require.NotEqual(t, Unclassified, label)
	}

	// Bin boundaries land in the upper bin, except the final edge.
	label, ok := scale.Classify(20)
	require.True(t, ok)
	assert.Equal(t, "Medium Risk", label)
	label, ok = scale.Classify(35)
	require.True(t, ok)
	assert.Equal(t, "High Risk", label)
	label, ok = scale.Classify(100)
	require.True(t, ok)
	assert.Equal(t, "High Risk", label)
}
