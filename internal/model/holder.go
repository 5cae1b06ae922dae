package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFileName is the artifact name looked up next to the executable.
const DefaultFileName = "liver_disease_staging_model.json"

var ErrModelNotFound = errors.New("model file not found")

type Status int

const (
	StatusNotLoaded Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// DefaultPath resolves DefaultFileName in the directory of the running
// executable, falling back to the working directory.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Holder loads a classifier lazily, at most once until Reset. The outcome
// of the first load, success or failure, is returned to every later
// caller. Concurrent callers block until the first load finishes.
type Holder struct {
	path string
	load LoadFunc
	log  logrus.FieldLogger

	mu     sync.Mutex
	status Status
	clf    Classifier
	err    error
	loads  int
}

func NewHolder(path string, load LoadFunc, log logrus.FieldLogger) *Holder {
	if load == nil {
		load = LoadArtifact
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Holder{path: path, load: load, log: log}
}

// Get returns the cached classifier, loading it on first use.
func (h *Holder) Get() (Classifier, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status == StatusNotLoaded {
		h.clf, h.err = h.loadLocked()
		if h.err != nil {
			h.status = StatusFailed
		} else {
			h.status = StatusLoaded
		}
	}
	return h.clf, h.err
}

func (h *Holder) loadLocked() (Classifier, error) {
	log := h.log.WithField("path", h.path)

	if _, err := os.Stat(h.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w at %s", ErrModelNotFound, h.path)
		} else {
			err = fmt.Errorf("stat model: %w", err)
		}
		log.WithError(err).Error("model unavailable")
		return nil, err
	}

	start := time.Now()
	h.loads++
	clf, err := h.load(h.path)
	if err == nil && clf == nil {
		err = errors.New("loader returned no classifier")
	}
	if err != nil {
		err = fmt.Errorf("load model: %w", err)
		log.WithError(err).Error("model unavailable")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"classes":  len(clf.Classes()),
		"duration": time.Since(start),
	}).Info("model loaded")
	return clf, nil
}

// Reset drops the cached outcome so the next Get loads again. Results
// memoized by a prediction.Service are not touched; use Service.Reset.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusNotLoaded
	h.clf = nil
	h.err = nil
}

// Status reports the load state without triggering a load.
func (h *Holder) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Loads reports how many times the deserializer has run.
func (h *Holder) Loads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loads
}

func (h *Holder) Path() string {
	return h.path
}
