package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureRanges(t *testing.T) {
	got := FeatureRanges()
	require.Len(t, got, 10)

	assert.Equal(t, Range{Min: 18, Max: 90}, got[Age])
	assert.Equal(t, Range{Min: 0.3, Max: 10.0}, got[Bilirubin])
	assert.Equal(t, Range{Min: 125, Max: 145}, got[Sodium])

	for _, f := range NumericFields() {
		r, ok := got[f]
		require.True(t, ok, "missing range for %s", f)
		assert.Less(t, r.Min, r.Max, f)
	}
}

func TestFeatureRangesReturnsCopy(t *testing.T) {
	got := FeatureRanges()
	got[Age] = Range{Min: 0, Max: 1}

	r, ok := RangeOf(Age)
	require.True(t, ok)
	assert.Equal(t, 18.0, r.Min)
}

func TestFeatureDescriptionsCoverAllFields(t *testing.T) {
	desc := FeatureDescriptions()
	require.Len(t, desc, 15)
	for _, f := range RequiredFields() {
		assert.NotEmpty(t, desc[f], f)
	}
}

func TestFieldListsArePartitioned(t *testing.T) {
	seen := map[string]int{}
	for _, f := range NumericFields() {
		seen[f]++
	}
	for _, f := range FlagFields() {
		seen[f]++
	}
	seen[Sex]++

	required := RequiredFields()
	require.Len(t, seen, len(required))
	for _, f := range required {
		assert.Equal(t, 1, seen[f], f)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 0.5, Max: 4.0}
	assert.True(t, r.Contains(0.5))
	assert.True(t, r.Contains(4.0))
	assert.False(t, r.Contains(0.49))
	assert.False(t, r.Contains(4.01))
	assert.False(t, r.Contains(math.NaN()))
}
