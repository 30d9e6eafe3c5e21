// Package catalog holds the static component catalogue for System Builder Studio.
//
// The catalogue maps a component-definition id (e.g. "microbit",
// "temp-humidity-sensor") to its category and pins. Every other package
// treats it as read-only lookup data: the validator resolves pin roles from
// it, the power engine reads categories from it, and the scheduler uses it to
// find sensors.
//
// # Key Types
//
//   - PinRole: Electrical/logical role of a pin (closed set)
//   - Category: Functional group of a component (mainboard, sensor, ...)
//   - ComponentDefinition: Immutable description of a placeable component
//   - Catalog: Lookup table built once at startup
//
// # Usage
//
//	cat := catalog.Builtin()
//	pin, ok := cat.Pin("microbit", "3v")
//	if ok && pin.Role == catalog.RolePower {
//	    // ...
//	}
//
// A YAML file can extend or override the built-in definitions:
//
//	cat, err := catalog.LoadFile("configs/catalog.yaml")
//
// # Thread Safety
//
// A Catalog is never mutated after construction and is safe for concurrent use.
package catalog
