// Package circuit decides which wires may be drawn and which components are
// energised.
//
// It has two halves, both pure functions of their inputs:
//
//   - Validate inspects a requested connection between two instance pins and
//     reports whether it is admissible, what role the resulting wire plays,
//     and any advisory warnings.
//   - Evaluate derives the power status of every placed instance from the
//     current wire set and lists the readiness issues that keep the
//     simulation from starting.
//
// Neither half stores anything. Callers re-run Evaluate whenever they need
// the power map; it must never be persisted as a separate source of truth.
//
// # Role Rules
//
// Roles are decided in a fixed order, each later rule overriding the role set
// by an earlier one: power, ground, serial, USB, WiFi. Only serial mismatches
// and unresolvable endpoints are hard errors. Everything else that looks
// wrong (power to ground, USB to GPIO, WiFi to a wired pin) is accepted with a
// warning so the sandbox stays forgiving.
//
// # Usage
//
//	a := circuit.New(catalog.Builtin())
//	res := a.Validate("temp-1", "vcc", "exp-1", "3v-out1", components, wires)
//	if !res.Valid {
//	    return res.Err()
//	}
//	eval := a.Evaluate(components, wires)
//	if !eval.Ready() {
//	    // eval.Issues lists what is missing
//	}
package circuit
