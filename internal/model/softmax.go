package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// FormatSoftmaxLinear identifies a standardised multinomial logistic
// regression exported by the training pipeline.
const FormatSoftmaxLinear = "softmax-linear/v1"

// Artifact is the on-disk form of a softmax-linear classifier. Features
// are the numeric inputs in order, then one column per categorical level.
type Artifact struct {
	Format       string             `json:"format"`
	Classes      []string           `json:"classes"`
	Numeric      []NumericInput     `json:"numeric"`
	Categorical  []CategoricalInput `json:"categorical"`
	Coefficients [][]float64        `json:"coefficients"`
	Intercepts   []float64          `json:"intercepts"`
}

// NumericInput is standardised as (x - Mean) / Scale.
type NumericInput struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalInput is one-hot encoded over Levels.
type CategoricalInput struct {
	Name   string   `json:"name"`
	Levels []string `json:"levels"`
}

// Softmax evaluates a softmax-linear artifact.
type Softmax struct {
	classes     []string
	numeric     []NumericInput
	categorical []CategoricalInput
	weights     *mat.Dense
	bias        *mat.VecDense
	width       int
}

// LoadArtifact reads a softmax-linear artifact from path.
func LoadArtifact(path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return NewSoftmax(a)
}

func NewSoftmax(a Artifact) (*Softmax, error) {
	if a.Format != FormatSoftmaxLinear {
		return nil, fmt.Errorf("unsupported artifact format %q", a.Format)
	}
	k := len(a.Classes)
	if k == 0 {
		return nil, errors.New("artifact has no classes")
	}
	seen := make(map[string]bool, k)
	for _, c := range a.Classes {
		if seen[c] {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}

	width := len(a.Numeric)
	for _, in := range a.Numeric {
		if in.Scale == 0 || math.IsNaN(in.Scale) {
			return nil, fmt.Errorf("numeric input %s has invalid scale", in.Name)
		}
	}
	for _, in := range a.Categorical {
		if len(in.Levels) == 0 {
			return nil, fmt.Errorf("categorical input %s has no levels", in.Name)
		}
		width += len(in.Levels)
	}
	if width == 0 {
		return nil, errors.New("artifact has no inputs")
	}

	if len(a.Coefficients) != k {
		return nil, fmt.Errorf("coefficients: want %d rows, got %d", k, len(a.Coefficients))
	}
	if len(a.Intercepts) != k {
		return nil, fmt.Errorf("intercepts: want %d, got %d", k, len(a.Intercepts))
	}
	flat := make([]float64, 0, k*width)
	for i, row := range a.Coefficients {
		if len(row) != width {
			return nil, fmt.Errorf("coefficients row %d: want %d columns, got %d", i, width, len(row))
		}
		flat = append(flat, row...)
	}

	return &Softmax{
		classes:     append([]string(nil), a.Classes...),
		numeric:     a.Numeric,
		categorical: a.Categorical,
		weights:     mat.NewDense(k, width, flat),
		bias:        mat.NewVecDense(k, append([]float64(nil), a.Intercepts...)),
		width:       width,
	}, nil
}

func (s *Softmax) Classes() []string {
	return append([]string(nil), s.classes...)
}

func (s *Softmax) Predict(row Row) (string, error) {
	probs, err := s.PredictProba(row)
	if err != nil {
		return "", err
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return s.classes[best], nil
}

func (s *Softmax) PredictProba(row Row) ([]float64, error) {
	x, err := s.encode(row)
	if err != nil {
		return nil, err
	}

	z := mat.NewVecDense(len(s.classes), nil)
	z.MulVec(s.weights, x)
	z.AddVec(z, s.bias)

	return softmax(z.RawVector().Data), nil
}

func (s *Softmax) encode(row Row) (*mat.VecDense, error) {
	x := make([]float64, 0, s.width)
	for _, in := range s.numeric {
		v, ok := row.Numeric[in.Name]
		if !ok {
			return nil, fmt.Errorf("row is missing column %s", in.Name)
		}
		x = append(x, (v-in.Mean)/in.Scale)
	}
	for _, in := range s.categorical {
		v, ok := row.Categorical[in.Name]
		if !ok {
			return nil, fmt.Errorf("row is missing column %s", in.Name)
		}
		matched := false
		for _, level := range in.Levels {
			if level == v {
				x = append(x, 1)
				matched = true
			} else {
				x = append(x, 0)
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown level %q for %s", v, in.Name)
		}
	}
	return mat.NewVecDense(s.width, x), nil
}

func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = math.Max(maxZ, v)
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
