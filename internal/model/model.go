// Package model loads the pre-trained stage classifier and exposes it
// through a small prediction contract. The classifier itself is produced
// by an external training process; this package only reads it.
package model

// Row is a single-row table handed to a classifier. Every column the
// classifier was trained on must be present.
type Row struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Classifier is a fitted, read-only model. Implementations must be safe
// for concurrent use once constructed.
type Classifier interface {
	// Classes returns the ordered class labels. PredictProba output is
	// aligned with this slice by position.
	Classes() []string
	Predict(row Row) (string, error)
	PredictProba(row Row) ([]float64, error)
}

// LoadFunc deserializes a classifier from path.
type LoadFunc func(path string) (Classifier, error)
