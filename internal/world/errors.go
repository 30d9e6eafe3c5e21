package world

import "errors"

// Domain errors for the world package.
var (
	// ErrUnknownDefinition is returned when placing a component whose
	// definition id is not in the catalogue.
	ErrUnknownDefinition = errors.New("world: unknown component definition")

	// ErrComponentNotFound is returned when an instance id does not exist.
	ErrComponentNotFound = errors.New("world: component not found")

	// ErrWireNotFound is returned when a wire id does not exist.
	ErrWireNotFound = errors.New("world: wire not found")

	// ErrDuplicateWire is returned when the same pair of pins is already
	// wired, in either direction.
	ErrDuplicateWire = errors.New("world: wire already exists")

	// ErrInvalidSpeed is returned when a speed multiplier is outside
	// [MinSpeed, MaxSpeed].
	ErrInvalidSpeed = errors.New("world: invalid speed multiplier")

	// ErrInvalidServer is returned when a server configuration is malformed.
	ErrInvalidServer = errors.New("world: invalid server configuration")

	// ErrNoController is returned when deploying code with no controller placed.
	ErrNoController = errors.New("world: no controller placed")

	// ErrNotSensor is returned when setting a reading on a non-sensor instance.
	ErrNotSensor = errors.New("world: component is not a sensor")

	// ErrScenarioNotFound is returned for an unknown built-in scenario name.
	ErrScenarioNotFound = errors.New("world: scenario not found")

	// ErrInvalidLayout is returned when a layout or scenario fails validation.
	ErrInvalidLayout = errors.New("world: invalid layout")

	// ErrLayoutNotFound is returned when a saved layout does not exist.
	ErrLayoutNotFound = errors.New("world: layout not found")
)
