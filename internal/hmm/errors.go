package hmm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySequence is returned by the decoders for zero-length input.
	ErrEmptySequence = errors.New("hmm: empty sequence")

	// ErrImpossibleSequence is returned when every state path has zero
	// probability under the model.
	ErrImpossibleSequence = errors.New("hmm: sequence has zero probability under the model")
)

// ModelFormatError reports a structural or numerical defect in a serialized
// model. It is only produced at load time.
type ModelFormatError struct {
	Source string // file path or format name, may be empty
	Where  string // section or state name
	Reason string
}

func (e *ModelFormatError) Error() string {
	msg := "model format"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Where != "" {
		msg += " [" + e.Where + "]"
	}
	return msg + ": " + e.Reason
}

func formatErrorf(source, where, format string, args ...any) *ModelFormatError {
	return &ModelFormatError{Source: source, Where: where, Reason: fmt.Sprintf(format, args...)}
}

// IsModelFormat reports whether err is (or wraps) a *ModelFormatError.
func IsModelFormat(err error) bool {
	var mfe *ModelFormatError
	return errors.As(err, &mfe)
}

// IsEmptySequence reports whether err is (or wraps) ErrEmptySequence.
func IsEmptySequence(err error) bool { return errors.Is(err, ErrEmptySequence) }
