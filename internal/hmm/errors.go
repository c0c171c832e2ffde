package hmm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTrainingSet is returned by Train when a labelled set has no
	// sequences or no A/C/G/T symbols to count.
	ErrEmptyTrainingSet = errors.New("hmm: empty training set")

	// ErrShortTrainingSet is returned by Train when a set's sequences average
	// one symbol or less, which leaves no valid self-transition.
	ErrShortTrainingSet = errors.New("hmm: training sequences too short")

	// ErrInvalidModel is wrapped by Validate failures.
	ErrInvalidModel = errors.New("hmm: invalid model")
)

// ModelFormatError reports a malformed model file. Field names the section
// being read (header, init, tran, emit) and Index the value within it.
type ModelFormatError struct {
	Field string
	Index int
	Err   error
}

func (e *ModelFormatError) Error() string {
	return fmt.Sprintf("hmm: model file: %s[%d]: %v", e.Field, e.Index, e.Err)
}

func (e *ModelFormatError) Unwrap() error { return e.Err }
