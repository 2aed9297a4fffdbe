package criteria

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedSectionKind is fatal: the kind has no sequence start.
	ErrUnrecognizedSectionKind = errors.New("unrecognized section kind")
	// ErrNonMonotonicInput is fatal: sequence numbers must strictly increase.
	ErrNonMonotonicInput = errors.New("non-monotonic input")
	// ErrDepthUnderflow is logged, never returned by Build.
	ErrDepthUnderflow = errors.New("depth underflow")
)

// HierarchyError describes why a section could not be (cleanly) tagged.
type HierarchyError struct {
	Kind           error
	SequenceNumber int // offending RawLine, 0 when no line is involved
	Position       int // 0-based position in the input, -1 when not applicable
	Detail         string
}

func (e *HierarchyError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s at sequence %d (line %d): %s", e.Kind, e.SequenceNumber, e.Position, e.Detail)
}

func (e *HierarchyError) Unwrap() error {
	return e.Kind
}

func checkMonotonic(lines []RawLine) error {
	prev := 0
	for i, l := range lines {
		if l.SequenceNumber <= prev {
			return &HierarchyError{
				Kind:           ErrNonMonotonicInput,
				SequenceNumber: l.SequenceNumber,
				Position:       i,
				Detail:         fmt.Sprintf("follows sequence %d", prev),
			}
		}
		prev = l.SequenceNumber
	}
	return nil
}
