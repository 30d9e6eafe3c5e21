package circuit

import (
	"fmt"
	"strings"

	"github.com/hangsome/system-builder-studio/internal/catalog"
)

// WireRole is the role a wire plays once drawn.
type WireRole string

// Wire role constants.
const (
	WirePower    WireRole = "power"
	WireGround   WireRole = "ground"
	WireSerial   WireRole = "serial"
	WireWireless WireRole = "wireless"
	WireData     WireRole = "data"
)

// ComponentState is the runtime state of a placed instance.
type ComponentState struct {
	Powered bool     `json:"powered" yaml:"powered"`
	Active  bool     `json:"active" yaml:"active"`
	Value   *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Component is a catalogue definition placed on the canvas.
type Component struct {
	InstanceID   string           `json:"instanceId" yaml:"instance_id"`
	DefinitionID string           `json:"definitionId" yaml:"definition_id"`
	Position     catalog.Position `json:"position" yaml:"position"`
	State        ComponentState   `json:"state" yaml:"state"`
}

// Wire joins two instance pins. It is undirected in meaning even though the
// endpoints are stored in from/to order.
type Wire struct {
	ID           string   `json:"id" yaml:"id"`
	FromInstance string   `json:"fromInstance" yaml:"from_instance"`
	FromPin      string   `json:"fromPin" yaml:"from_pin"`
	ToInstance   string   `json:"toInstance" yaml:"to_instance"`
	ToPin        string   `json:"toPin" yaml:"to_pin"`
	Role         WireRole `json:"role" yaml:"role"`
	Valid        bool     `json:"valid" yaml:"valid"`
}

// From returns the wire's first endpoint.
func (w Wire) From() Endpoint { return Endpoint{Instance: w.FromInstance, Pin: w.FromPin} }

// To returns the wire's second endpoint.
func (w Wire) To() Endpoint { return Endpoint{Instance: w.ToInstance, Pin: w.ToPin} }

// Touches reports whether either end of the wire is ep.
func (w Wire) Touches(ep Endpoint) bool {
	return w.From() == ep || w.To() == ep
}

// Endpoint identifies one pin on one placed instance.
type Endpoint struct {
	Instance string `json:"instance"`
	Pin      string `json:"pin"`
}

func (e Endpoint) String() string {
	return e.Instance + ":" + e.Pin
}

// Result is the outcome of validating a requested connection.
type Result struct {
	Valid    bool     `json:"valid"`
	Role     WireRole `json:"role"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidWire that carries every validation error.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidWire, strings.Join(r.Errors, "; "))
}

// Evaluation is the derived power status of a layout.
type Evaluation struct {
	// Issues block the simulation from starting.
	Issues []string `json:"issues"`

	// Warnings are advisory only.
	Warnings []string `json:"warnings"`

	PowerStatus map[string]bool `json:"powerStatus"`
}

// Ready reports whether there are no blocking issues.
func (e Evaluation) Ready() bool {
	return len(e.Issues) == 0
}

// Powered reports whether the instance is energised.
func (e Evaluation) Powered(instanceID string) bool {
	return e.PowerStatus[instanceID]
}
