package prediction

import (
	"errors"
	"fmt"
)

// Kind classifies a failed prediction by the stage that failed.
type Kind int

const (
	// KindValidation means the submitted record broke a catalog rule.
	KindValidation Kind = iota + 1
	// KindModelUnavailable means the classifier could not be located or
	// deserialized.
	KindModelUnavailable
	// KindPrediction means inference failed on a valid record with a
	// loaded model.
	KindPrediction
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindModelUnavailable:
		return "model_unavailable"
	case KindPrediction:
		return "prediction"
	default:
		return "unknown"
	}
}

// Error is returned by every failing Service call.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation:
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}
