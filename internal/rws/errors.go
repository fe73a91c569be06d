package rws

import (
	"errors"
	"fmt"
)

// ErrEmptySample is returned when an aggregation is requested over zero
// values. Callers treat it as a non-fatal skip for that analysis step.
var ErrEmptySample = errors.New("empty sample")

// LoadError reports a fatal failure reading or parsing an input file.
// Loader failures abort the run; per-angle analysis failures do not.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
