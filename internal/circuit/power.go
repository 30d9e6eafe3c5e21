package circuit

import (
	"fmt"

	"github.com/hangsome/system-builder-studio/internal/catalog"
)

// wiring is the per-instance summary of which pin roles have a wire.
type wiring struct {
	powerLinked  bool // power pin joined to another instance's power pin
	groundLinked bool // ground pin joined to another instance's ground pin
	txWired      bool // any wire on a serial_tx pin
	rxWired      bool // any wire on a serial_rx pin
	signalWired  bool // any wire on a digital/analog/data pin
}

// Evaluate derives which instances are powered and which readiness issues
// remain.
//
// Mainboards are self-powered. Every other instance with a power pin is
// powered iff a wire joins that pin to another instance's power pin. Ground
// is checked separately and does not gate the power flag. Network modules
// additionally need both serial pins wired.
//
// The result depends only on (components, wires); calling it twice on the
// same input yields identical output.
func (a *Analyzer) Evaluate(components []Component, wires []Wire) Evaluation {
	eval := Evaluation{
		Issues:      []string{},
		Warnings:    []string{},
		PowerStatus: make(map[string]bool, len(components)),
	}

	byID := indexComponents(components)
	links, wireWarnings := a.summarise(byID, wires)
	eval.Warnings = append(eval.Warnings, wireWarnings...)

	for _, c := range components {
		eval.PowerStatus[c.InstanceID] = false

		def, ok := a.catalog.Get(c.DefinitionID)
		if !ok {
			eval.Warnings = append(eval.Warnings,
				fmt.Sprintf("%s uses unknown component %q", c.InstanceID, c.DefinitionID))
			continue
		}
		if def.Category == catalog.CategoryMainboard {
			eval.PowerStatus[c.InstanceID] = true
			continue
		}

		w := links[c.InstanceID]
		if def.HasRole(catalog.RolePower) {
			if w.powerLinked {
				eval.PowerStatus[c.InstanceID] = true
			} else {
				eval.Issues = append(eval.Issues, def.Name+" missing power")
			}
		}
		if def.HasRole(catalog.RoleGround) && !w.groundLinked {
			eval.Issues = append(eval.Issues, def.Name+" missing ground")
		}

		if catalog.IsNetworkModule(def.ID) {
			if !w.txWired {
				eval.Issues = append(eval.Issues, def.Name+" TX not wired")
			}
			if !w.rxWired {
				eval.Issues = append(eval.Issues, def.Name+" RX not wired")
			}
		}

		if (def.Category == catalog.CategorySensor || def.Category == catalog.CategoryActuator) && !w.signalWired {
			eval.Warnings = append(eval.Warnings, def.Name+" has no signal connection")
		}
	}

	return eval
}

// summarise walks the wire list once and records, per instance, which kinds
// of link it has. Wires that reference missing instances or pins are
// reported as warnings and otherwise ignored.
func (a *Analyzer) summarise(byID map[string]Component, wires []Wire) (map[string]wiring, []string) {
	links := make(map[string]wiring, len(byID))
	var warnings []string

	for _, w := range wires {
		from, okFrom := a.resolve(w.From(), byID)
		to, okTo := a.resolve(w.To(), byID)
		if !okFrom || !okTo {
			warnings = append(warnings, fmt.Sprintf("wire %s references a missing component or pin", w.ID))
			continue
		}
		if !w.Valid {
			warnings = append(warnings, fmt.Sprintf("wire %s is marked invalid", w.ID))
		}
		if w.FromInstance == w.ToInstance {
			continue
		}

		for _, pair := range [2][2]resolved{{from, to}, {to, from}} {
			self, peer := pair[0], pair[1]
			l := links[self.ep.Instance]
			switch self.pin.Role {
			case catalog.RolePower:
				if peer.pin.Role == catalog.RolePower {
					l.powerLinked = true
				}
			case catalog.RoleGround:
				if peer.pin.Role == catalog.RoleGround {
					l.groundLinked = true
				}
			case catalog.RoleSerialTX:
				l.txWired = true
			case catalog.RoleSerialRX:
				l.rxWired = true
			}
			if self.pin.Role.IsSignal() {
				l.signalWired = true
			}
			links[self.ep.Instance] = l
		}
	}

	return links, warnings
}

// HasController reports whether any placed instance is a programmable
// controller.
func (a *Analyzer) HasController(components []Component) bool {
	for _, c := range components {
		if def, ok := a.catalog.Get(c.DefinitionID); ok && def.Controller {
			return true
		}
	}
	return false
}

// NetworkReachable reports whether the layout can reach the mock server: a
// network module that is powered, has both serial pins wired, and an SSID is
// configured on the router.
func (a *Analyzer) NetworkReachable(components []Component, wires []Wire, ssid string, eval Evaluation) bool {
	if ssid == "" {
		return false
	}
	links, _ := a.summarise(indexComponents(components), wires)
	for _, c := range components {
		if !catalog.IsNetworkModule(c.DefinitionID) || !eval.Powered(c.InstanceID) {
			continue
		}
		if l := links[c.InstanceID]; l.txWired && l.rxWired {
			return true
		}
	}
	return false
}

// Sensors returns the placed sensor instances in layout order.
func (a *Analyzer) Sensors(components []Component) []Component {
	var out []Component
	for _, c := range components {
		if def, ok := a.catalog.Get(c.DefinitionID); ok && def.Category == catalog.CategorySensor {
			out = append(out, c)
		}
	}
	return out
}
