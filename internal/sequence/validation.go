package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when an invalid base is encountered.
type InvalidBaseError struct {
	Position int
	Found    byte
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %q at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// InvalidLengthError is returned when two parallel strings disagree in
// length, such as FASTQ bases and qualities.
type InvalidLengthError struct {
	Expected int
	Actual   int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("expected length %d, got %d", e.Expected, e.Actual)
}

func (e *InvalidLengthError) IsSequenceError() {}

var validNucleotides = func() [256]bool {
	var t [256]bool
	for _, c := range []byte("ACGTUNacgtun") {
		t[c] = true
	}
	return t
}()

// IsValidBase reports whether c is one of A, C, G, T, U, N in either case.
func IsValidBase(c byte) bool {
	return validNucleotides[c]
}

// ValidateNucleotides checks that bases contains only A, C, G, T, U and N in
// either case.
func ValidateNucleotides(bases string) error {
	for i := 0; i < len(bases); i++ {
		if !validNucleotides[bases[i]] {
			return &InvalidBaseError{Position: i, Found: bases[i]}
		}
	}
	return nil
}
