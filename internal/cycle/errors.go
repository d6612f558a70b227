package cycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCycle indicates the step budget ran out before a repeat was seen.
	ErrNoCycle = errors.New("cycle: no repeat found within step budget")

	// ErrNegativeTarget indicates a negative iteration count.
	ErrNegativeTarget = errors.New("cycle: negative target")
)

// DetectionError wraps a detection failure with the work already spent.
type DetectionError struct {
	Detector string
	Steps    int
	Wrapped  error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s: gave up after %d steps: %v", e.Detector, e.Steps, e.Wrapped)
}

func (e *DetectionError) Unwrap() error {
	return e.Wrapped
}
