package catalog

import "errors"

// Domain errors for the catalog package.
var (
	// ErrDefinitionNotFound is returned when a definition id is not in the catalog.
	ErrDefinitionNotFound = errors.New("catalog: definition not found")

	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("catalog: invalid definition")

	// ErrInvalidRole is returned when a pin role is not recognised.
	ErrInvalidRole = errors.New("catalog: invalid pin role")

	// ErrInvalidCategory is returned when a category is not recognised.
	ErrInvalidCategory = errors.New("catalog: invalid category")

	// ErrDuplicatePin is returned when a definition declares the same pin id twice.
	ErrDuplicatePin = errors.New("catalog: duplicate pin")
)
