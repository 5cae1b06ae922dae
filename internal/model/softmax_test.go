package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyArtifact() Artifact {
	return Artifact{
		Format:      FormatSoftmaxLinear,
		Classes:     []string{"low", "high"},
		Numeric:     []NumericInput{{Name: "x", Mean: 10, Scale: 2}},
		Categorical: []CategoricalInput{{Name: "c", Levels: []string{"a", "b"}}},
		Coefficients: [][]float64{
			{-1, 0, 0},
			{1, 0, 0},
		},
		Intercepts: []float64{0, 0},
	}
}

func TestSoftmaxProbabilities(t *testing.T) {
	s, err := NewSoftmax(tinyArtifact())
	require.NoError(t, err)

	row := Row{Numeric: map[string]float64{"x": 10}, Categorical: map[string]string{"c": "a"}}
	probs, err := s.PredictProba(row)
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[1], 1e-12)

	row.Numeric["x"] = 14
	probs, err = s.PredictProba(row)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)
	assert.Greater(t, probs[1], probs[0])

	label, err := s.Predict(row)
	require.NoError(t, err)
	assert.Equal(t, "high", label)
}

func TestSoftmaxPredictTieGoesToFirstClass(t *testing.T) {
	s, err := NewSoftmax(tinyArtifact())
	require.NoError(t, err)

	label, err := s.Predict(Row{Numeric: map[string]float64{"x": 10}, Categorical: map[string]string{"c": "b"}})
	require.NoError(t, err)
	assert.Equal(t, "low", label)
}

func TestSoftmaxRowErrors(t *testing.T) {
	s, err := NewSoftmax(tinyArtifact())
	require.NoError(t, err)

	_, err = s.PredictProba(Row{Categorical: map[string]string{"c": "a"}})
	assert.ErrorContains(t, err, "missing column x")

	_, err = s.PredictProba(Row{Numeric: map[string]float64{"x": 1}})
	assert.ErrorContains(t, err, "missing column c")

	_, err = s.PredictProba(Row{Numeric: map[string]float64{"x": 1}, Categorical: map[string]string{"c": "z"}})
	assert.ErrorContains(t, err, "unknown level")
}

func TestNewSoftmaxRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"format", func(a *Artifact) { a.Format = "pickle" }},
		{"no classes", func(a *Artifact) { a.Classes = nil }},
		{"duplicate class", func(a *Artifact) { a.Classes = []string{"low", "low"} }},
		{"zero scale", func(a *Artifact) { a.Numeric[0].Scale = 0 }},
		{"empty levels", func(a *Artifact) { a.Categorical[0].Levels = nil }},
		{"row count", func(a *Artifact) { a.Coefficients = a.Coefficients[:1] }},
		{"column count", func(a *Artifact) { a.Coefficients[1] = []float64{1} }},
		{"intercepts", func(a *Artifact) { a.Intercepts = []float64{0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tinyArtifact()
			tt.mutate(&a)
			_, err := NewSoftmax(a)
			assert.Error(t, err)
		})
	}
}

func TestLoadArtifactFromDisk(t *testing.T) {
	payload, err := json.Marshal(tinyArtifact())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	clf, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high"}, clf.Classes())

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err = LoadArtifact(path)
	assert.ErrorContains(t, err, "decode artifact")
}

func TestBundledArtifactLoads(t *testing.T) {
	clf, err := LoadArtifact(filepath.Join("..", "..", "models", DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"Stage 1", "Stage 2", "Stage 3", "Stage 4"}, clf.Classes())

	row := Row{
		Numeric: map[string]float64{
			"Age": 50, "Albumin": 4.0, "Bilirubin": 1.0, "ALT": 30, "AST": 30,
			"ALP": 100, "INR": 1.0, "Platelets": 150, "Sodium": 135, "Creatinine": 1.0,
			"Ascites": 0, "Hepatomegaly": 0, "Spiders": 0, "Edema": 0,
		},
		Categorical: map[string]string{"Sex": "M"},
	}
	probs, err := clf.PredictProba(row)
	require.NoError(t, err)
	require.Len(t, probs, 4)

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
