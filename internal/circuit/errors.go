package circuit

import "errors"

// Domain errors for the circuit package.
var (
	// ErrInvalidWire is returned by Result.Err when a connection was rejected.
	ErrInvalidWire = errors.New("circuit: invalid wire")
)
