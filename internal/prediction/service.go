// Package prediction turns a submitted patient record into a predicted
// disease stage and per-stage probabilities using the loaded classifier.
package prediction

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/hepatostage/internal/catalog"
	"github.com/Skufu/hepatostage/internal/model"
	"github.com/Skufu/hepatostage/internal/patient"
)

// ModelSource hands out the shared classifier. *model.Holder implements it.
type ModelSource interface {
	Get() (model.Classifier, error)
}

// Result is the outcome of one prediction. Classes keeps the classifier's
// label order; Probabilities is keyed by the same labels.
type Result struct {
	Stage         string             `json:"stage"`
	Probabilities map[string]float64 `json:"probabilities"`
	Classes       []string           `json:"classes"`
}

func (r Result) clone() *Result {
	probs := make(map[string]float64, len(r.Probabilities))
	for k, v := range r.Probabilities {
		probs[k] = v
	}
	return &Result{
		Stage:         r.Stage,
		Probabilities: probs,
		Classes:       append([]string(nil), r.Classes...),
	}
}

type Service struct {
	models    ModelSource
	log       logrus.FieldLogger
	cacheSize int
	cache     *lru.Cache[patient.Record, Result]
}

type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithCacheSize keeps up to n results for identical records. Zero
// disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Service) { s.cacheSize = n }
}

func NewService(models ModelSource, opts ...Option) (*Service, error) {
	if models == nil {
		return nil, errors.New("prediction: nil model source")
	}
	s := &Service{models: models, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize < 0 {
		return nil, fmt.Errorf("prediction: negative cache size %d", s.cacheSize)
	}
	if s.cacheSize > 0 {
		cache, err := lru.New[patient.Record, Result](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("prediction: create cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Predict validates raw and, if it is acceptable, runs one inference. The
// model is never touched for an invalid record. Every error is an *Error.
func (s *Service) Predict(raw map[string]any) (*Result, error) {
	rec, err := patient.Parse(raw)
	if err != nil {
		perr := &Error{Kind: KindValidation, Message: err.Error(), Err: err}
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			perr.Field = verr.Field
		}
		s.log.WithField("field", perr.Field).Debug("record rejected")
		return nil, perr
	}
	return s.predict(rec)
}

// Reset forgets every memoized result and, when the source supports it,
// the loaded classifier. Results are only reused within a single load.
func (s *Service) Reset() {
	if r, ok := s.models.(interface{ Reset() }); ok {
		r.Reset()
	}
	if s.cache != nil {
		s.cache.Purge()
	}
}

// PredictRecord is Predict for an already typed record. The record is
// still checked against the catalog.
func (s *Service) PredictRecord(rec patient.Record) (*Result, error) {
	return s.Predict(rec.Raw())
}

func (s *Service) predict(rec patient.Record) (*Result, error) {
	if s.cache != nil {
		if res, ok := s.cache.Get(rec); ok {
			return res.clone(), nil
		}
	}

	clf, err := s.models.Get()
	if err != nil {
		return nil, &Error{Kind: KindModelUnavailable, Message: "model unavailable", Err: err}
	}
	if clf == nil {
		return nil, &Error{Kind: KindModelUnavailable, Message: "model unavailable", Err: errors.New("no classifier loaded")}
	}

	res, err := infer(clf, rec)
	if err != nil {
		s.log.WithError(err).Error("inference failed")
		return nil, &Error{Kind: KindPrediction, Message: "prediction error", Err: err}
	}

	if s.cache != nil {
		s.cache.Add(rec, *res)
	}
	return res.clone(), nil
}

func infer(clf model.Classifier, rec patient.Record) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("classifier panic: %v", p)
		}
	}()

	row := toRow(rec)
	stage, err := clf.Predict(row)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	probs, err := clf.PredictProba(row)
	if err != nil {
		return nil, fmt.Errorf("predict proba: %w", err)
	}
	classes := clf.Classes()
	if len(probs) != len(classes) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), len(classes))
	}

	byClass := make(map[string]float64, len(classes))
	for i, c := range classes {
		if _, dup := byClass[c]; dup {
			return nil, fmt.Errorf("duplicate class label %q", c)
		}
		p := probs[i]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("probability %v for %s out of range", p, c)
		}
		byClass[c] = p
	}
	if _, ok := byClass[stage]; !ok {
		return nil, fmt.Errorf("predicted stage %q is not a known class", stage)
	}

	return &Result{Stage: stage, Probabilities: byClass, Classes: classes}, nil
}

func toRow(rec patient.Record) model.Row {
	numeric := rec.Numerics()
	for k, v := range rec.Flags() {
		if v {
			numeric[k] = 1
		} else {
			numeric[k] = 0
		}
	}
	return model.Row{
		Numeric:     numeric,
		Categorical: map[string]string{catalog.Sex: string(rec.Sex)},
	}
}
