package simulation

import (
	"errors"
	"strings"
)

// ErrNotReady is wrapped by ReadinessError.
var ErrNotReady = errors.New("simulation: not ready to start")

// ReadinessError lists the issues that kept the simulation from starting.
type ReadinessError struct {
	Issues []string
}

func (e *ReadinessError) Error() string {
	return ErrNotReady.Error() + ": " + strings.Join(e.Issues, "; ")
}

// Unwrap returns ErrNotReady.
func (e *ReadinessError) Unwrap() error {
	return ErrNotReady
}
