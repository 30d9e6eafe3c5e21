package circuit

import (
	"fmt"

	"github.com/hangsome/system-builder-studio/internal/catalog"
)

// wifiPinID is the pin id shared by every wireless endpoint.
const wifiPinID = "wifi"

// Validation messages.
const (
	msgPinNotFound = "pin definition not found"
	msgSelfLoop    = "cannot connect a component to itself"
	msgTXToRX      = "TX must connect to RX"
	msgRXToTX      = "RX must connect to TX"
)

// Analyzer validates connections and evaluates power status against a
// component catalogue. It holds no layout state and is safe for concurrent use.
type Analyzer struct {
	catalog *catalog.Catalog
}

// New creates an Analyzer backed by the given catalogue.
func New(cat *catalog.Catalog) *Analyzer {
	return &Analyzer{catalog: cat}
}

// Catalog returns the catalogue the analyzer resolves definitions against.
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// resolved is one endpoint after catalogue lookup.
type resolved struct {
	ep  Endpoint
	pin catalog.PinDefinition
}

// resolve finds the pin definition for an endpoint on a placed instance.
func (a *Analyzer) resolve(ep Endpoint, byID map[string]Component) (resolved, bool) {
	c, ok := byID[ep.Instance]
	if !ok {
		return resolved{}, false
	}
	pin, ok := a.catalog.Pin(c.DefinitionID, ep.Pin)
	if !ok {
		return resolved{}, false
	}
	return resolved{ep: ep, pin: pin}, true
}

// Validate decides whether a wire may join fromInstance.fromPin and
// toInstance.toPin.
//
// The check is deterministic and side-effect free. It flags pins that are
// already wired but does not reject exact duplicates; the caller owns that
// decision.
//
// Parameters:
//   - fromInstance, fromPin: First endpoint
//   - toInstance, toPin: Second endpoint
//   - components: Currently placed instances
//   - wires: Existing wires (may be empty)
//
// Returns:
//   - Result: Validity, wire role, errors and warnings
func (a *Analyzer) Validate(fromInstance, fromPin, toInstance, toPin string, components []Component, wires []Wire) Result {
	res := Result{Role: WireData, Errors: []string{}, Warnings: []string{}}

	byID := indexComponents(components)
	from, okFrom := a.resolve(Endpoint{Instance: fromInstance, Pin: fromPin}, byID)
	to, okTo := a.resolve(Endpoint{Instance: toInstance, Pin: toPin}, byID)
	if !okFrom || !okTo {
		res.Errors = append(res.Errors, msgPinNotFound)
		return res
	}

	if fromInstance == toInstance {
		res.Errors = append(res.Errors, msgSelfLoop)
		return res
	}

	set := NewWireSet(wires)
	for _, r := range []resolved{from, to} {
		if set.Connected(r.ep) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s pin already connected", r.pin.Name))
		}
	}

	classify(&res, from.pin, to.pin)

	res.Valid = len(res.Errors) == 0
	return res
}

// classify applies the role table. Later rules override the role chosen by
// earlier ones.
func classify(res *Result, a, b catalog.PinDefinition) {
	ra, rb := a.Role, b.Role

	// Power.
	if ra == catalog.RolePower || rb == catalog.RolePower {
		res.Role = WirePower
		switch {
		case ra == rb:
		case ra == catalog.RoleGround || rb == catalog.RoleGround:
			res.Warnings = append(res.Warnings, "power connected directly to ground, this would short the supply")
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("power pin connected to %s pin", other(ra, rb, catalog.RolePower)))
		}
	}

	// Ground. A power/ground pair has already been reported above.
	if (ra == catalog.RoleGround || rb == catalog.RoleGround) && ra != catalog.RolePower && rb != catalog.RolePower {
		res.Role = WireGround
		if ra != rb {
			res.Warnings = append(res.Warnings, fmt.Sprintf("ground pin connected to %s pin", other(ra, rb, catalog.RoleGround)))
		}
	}

	// Serial.
	if ra.IsSerial() || rb.IsSerial() {
		res.Role = WireSerial
		switch {
		case ra == catalog.RoleSerialTX && rb == catalog.RoleSerialRX,
			ra == catalog.RoleSerialRX && rb == catalog.RoleSerialTX:
		case ra == catalog.RoleSerialTX || rb == catalog.RoleSerialTX:
			res.Errors = append(res.Errors, msgTXToRX)
		default:
			res.Errors = append(res.Errors, msgRXToTX)
		}
	}

	// USB.
	if ra == catalog.RoleUSB || rb == catalog.RoleUSB {
		if ra == rb {
			res.Role = WireData
		} else {
			res.Warnings = append(res.Warnings, "USB pin should connect to a USB port")
		}
	}

	// WiFi.
	if a.ID == wifiPinID || b.ID == wifiPinID {
		if a.ID == b.ID {
			res.Role = WireWireless
		} else {
			res.Warnings = append(res.Warnings, "WiFi pin should pair with another WiFi pin")
		}
	}
}

// other returns whichever of a, b is not known.
func other(a, b, known catalog.PinRole) catalog.PinRole {
	if a == known {
		return b
	}
	return a
}

func indexComponents(components []Component) map[string]Component {
	m := make(map[string]Component, len(components))
	for _, c := range components {
		m[c.InstanceID] = c
	}
	return m
}
