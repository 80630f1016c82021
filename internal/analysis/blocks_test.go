package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo20(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "zero maps to zero", value: 0, expected: 0},
		{name: "max maps to block max", value: 5, expected: 20},
		{name: "half maps to half", value: 2.5, expected: 10},
		{name: "negative clamps to zero", value: -1, expected: 0},
		{name: "overshoot clamps to block max", value: 7, expected: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, to20(tt.value), 1e-9)
		})
	}
}

func TestBlockScore(t *testing.T) {
	cols := []string{"a", "b", "c", "d"}

	t.Run("all present averages rescaled values", func(t *testing.T) {
		indicators := map[string]float64{"a": 5, "b": 5, "c": 5, "d": 5}
		assert.InDelta(t, 20, blockScore(indicators, cols), 1e-9)
	})

	t.Run("missing columns count as zero", func(t *testing.T) {
		indicators := map[string]float64{"a": 5, "b": 5}
		assert.InDelta(t, 10, blockScore(indicators, cols), 1e-9)
	})

	t.Run("empty indicator map yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, blockScore(map[string]float64{}, cols))
	})

	t.Run("empty column list yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, blockScore(map[string]float64{"a": 5}, nil))
	})
}

func TestAggregate(t *testing.T) {
	indicators := make(map[string]float64, len(DefaultModelColumns))
	for _, col := range DefaultModelColumns {
		indicators[col] = 5
	}

	b := Aggregate(indicators)
	assert.InDelta(t, 20, b.Citation, 1e-9)
	assert.InDelta(t, 20, b.Methodology, 1e-9)
	assert.InDelta(t, 20, b.Innovation, 1e-9)
	assert.InDelta(t, 20, b.Techniques, 1e-9)
	assert.InDelta(t, 20, b.Results, 1e-9)
	assert.Equal(t, 100, TotalScore(b))
}

func TestAggregateEmpty(t *testing.T) {
	b := Aggregate(map[string]float64{})
	assert.Equal(t, Breakdown{}, b)
	assert.Equal(t, 0, TotalScore(b))
}

func TestBlockColumnsCoverAllDefaults(t *testing.T) {
	seen := make(map[string]bool)
	for _, cols := range blockColumns {
		for _, col := range cols {
			assert.False(t, seen[col], "column %q assigned twice", col)
			seen[col] = true
		}
	}
	assert.Len(t, seen, len(DefaultModelColumns))
	for _, col := range DefaultModelColumns {
		assert.True(t, seen[col], "column %q has no block", col)
	}
}
