package strategy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned when a window length is not a positive integer.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrInsufficientData is returned when a caller needs more history than the series holds.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMisalignedSeries is returned when two aligned sequences differ in length.
	ErrMisalignedSeries = errors.New("misaligned series")
)

// WindowError names the window parameter that failed validation.
type WindowError struct {
	Name  string
	Value int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s window must be a positive integer, got %d", e.Name, e.Value)
}

func (e *WindowError) Unwrap() error { return ErrInvalidWindow }

// ValidateWindow checks that window is at least 1.
func ValidateWindow(name string, window int) error {
	if window < 1 {
		return &WindowError{Name: name, Value: window}
	}
	return nil
}
