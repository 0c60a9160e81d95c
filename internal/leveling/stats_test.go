package leveling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func TestCalculateStatisticsQuartiles(t *testing.T) {
	stats := calculateStatistics([]float64{10, 20, 30, 40})

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 25.0, stats.Median)
	assert.Equal(t, 17.5, stats.Q1)
	assert.Equal(t, 32.5, stats.Q3)
	assert.Equal(t, 15.0, stats.IQR)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 40.0, stats.Max)
	assert.Equal(t, 30.0, stats.Range)
	assert.Equal(t, 25.0, stats.Mean)
}

func TestCalculateStatisticsEmptySample(t *testing.T) {
	stats := calculateStatistics(nil)
	assert.Equal(t, StatisticalSummary{}, stats)

	stats = calculateStatistics([]float64{})
	assert.Equal(t, StatisticalSummary{}, stats)
}

func TestCalculateStatisticsSingleValue(t *testing.T) {
	stats := calculateStatistics([]float64{1000})

	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1000.0, stats.Mean)
	assert.Equal(t, 1000.0, stats.Median)
	assert.Equal(t, 0.0, stats.Variance)
	assert.Equal(t, 0.0, stats.StandardDeviation)
	assert.Equal(t, 0.0, stats.CoefficientOfVariation)
	assert.Equal(t, 0.0, stats.Skewness)
	assert.Equal(t, 0.0, stats.Kurtosis)
}

func TestCalculateStatisticsSmallSampleGuards(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"two values", []float64{100, 200}},
		{"three values", []float64{100, 200, 300}},
		{"identical values", []float64{50, 50, 50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := calculateStatistics(tt.values)

			assert.True(t, isFinite(stats.Skewness), "skewness should be finite")
			assert.True(t, isFinite(stats.Kurtosis), "kurtosis should be finite")
			assert.True(t, isFinite(stats.CoefficientOfVariation), "CV should be finite")
		})
	}

	// Kurtosis needs four points; three points must report the sentinel.
	stats := calculateStatistics([]float64{100, 200, 300})
	assert.Equal(t, 0.0, stats.Kurtosis)
	assert.NotEqual(t, 0.0, stats.Variance)
}

func TestCalculateStatisticsVariance(t *testing.T) {
	// Sample variance with divisor n-1: [2,4,6] -> mean 4, variance 4.
	stats := calculateStatistics([]float64{2, 4, 6})

	assert.Equal(t, 4.0, stats.Mean)
	assert.Equal(t, 4.0, stats.Variance)
	assert.Equal(t, 2.0, stats.StandardDeviation)
	assert.Equal(t, 0.5, stats.CoefficientOfVariation)
}

func TestCalculateStatisticsOrderIndependence(t *testing.T) {
	// Float accumulation order matters at the ULP level, so every ordering
	// of the same sample must produce a bit-identical summary.
	baseline := calculateStatistics([]float64{98, 99, 100, 101, 102, 500})

	orderings := [][]float64{
		{500, 102, 101, 100, 99, 98},
		{100, 500, 98, 102, 99, 101},
		{99, 98, 500, 101, 102, 100},
	}
	for _, values := range orderings {
		assert.Equal(t, baseline, calculateStatistics(values))
	}
}

func TestCalculateStatisticsSkewness(t *testing.T) {
	// Right-skewed sample should report positive skewness.
	stats := calculateStatistics([]float64{1, 2, 3, 4, 100})
	assert.Greater(t, stats.Skewness, 0.0)

	// Symmetric sample should report near-zero skewness.
	stats = calculateStatistics([]float64{1, 2, 3, 4, 5})
	assert.InDelta(t, 0.0, stats.Skewness, 1e-9)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"p0 is min", 0, 10},
		{"p25", 25, 17.5},
		{"p50", 50, 25},
		{"p75", 75, 32.5},
		{"p100 is max", 100, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, percentile(sorted, tt.p))
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 50))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.1, clamp(-5, 0.1, 1.0))
	assert.Equal(t, 1.0, clamp(5, 0.1, 1.0))
	assert.Equal(t, 0.5, clamp(0.5, 0.1, 1.0))
}

func TestStatisticsNeverProduceNaN(t *testing.T) {
	samples := [][]float64{
		{1000},
		{1000, 1000},
		{0.0001, 0.0002},
		{1, 1, 1},
		{5, 5, 5, 5, 5},
	}

	for _, sample := range samples {
		stats := calculateStatistics(sample)
		require.True(t, isFinite(stats.Mean))
		require.True(t, isFinite(stats.Variance))
		require.True(t, isFinite(stats.StandardDeviation))
		require.True(t, isFinite(stats.CoefficientOfVariation))
		require.True(t, isFinite(stats.Skewness))
		require.True(t, isFinite(stats.Kurtosis))
	}
}
