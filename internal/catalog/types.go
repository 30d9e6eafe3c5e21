package catalog

import (
	"fmt"
	"sort"
)

// PinRole is the electrical or logical role of a pin.
// The set is closed; any other value is rejected by Validate.
type PinRole string

// Pin role constants.
const (
	RolePower    PinRole = "power"
	RoleGround   PinRole = "ground"
	RoleDigital  PinRole = "digital"
	RoleAnalog   PinRole = "analog"
	RoleSerialTX PinRole = "serial_tx"
	RoleSerialRX PinRole = "serial_rx"
	RoleUSB      PinRole = "usb"
	RoleData     PinRole = "data"
)

// AllPinRoles returns every recognised pin role.
func AllPinRoles() []PinRole {
	return []PinRole{
		RolePower, RoleGround, RoleDigital, RoleAnalog,
		RoleSerialTX, RoleSerialRX, RoleUSB, RoleData,
	}
}

// IsValid reports whether r is one of the recognised roles.
func (r PinRole) IsValid() bool {
	switch r {
	case RolePower, RoleGround, RoleDigital, RoleAnalog,
		RoleSerialTX, RoleSerialRX, RoleUSB, RoleData:
		return true
	default:
		return false
	}
}

// IsSerial reports whether r is one of the two serial roles.
func (r PinRole) IsSerial() bool {
	return r == RoleSerialTX || r == RoleSerialRX
}

// IsSignal reports whether r carries a data signal (digital, analog or data).
func (r PinRole) IsSignal() bool {
	return r == RoleDigital || r == RoleAnalog || r == RoleData
}

// Category groups component definitions by function.
type Category string

// Category constants.
const (
	CategoryMainboard Category = "mainboard"
	CategorySensor    Category = "sensor"
	CategoryActuator  Category = "actuator"
	CategoryNetwork   Category = "network"
	CategoryServer    Category = "server"
)

// AllCategories returns every recognised category.
func AllCategories() []Category {
	return []Category{
		CategoryMainboard, CategorySensor, CategoryActuator,
		CategoryNetwork, CategoryServer,
	}
}

// IsValid reports whether c is one of the recognised categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMainboard, CategorySensor, CategoryActuator,
		CategoryNetwork, CategoryServer:
		return true
	default:
		return false
	}
}

// Position is a 2D coordinate on the canvas, in canvas units.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PinDefinition describes one connection point on a component.
type PinDefinition struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Role     PinRole  `json:"role" yaml:"role"`
	Position Position `json:"position" yaml:"position"`
}

// ComponentDefinition is the immutable description of a placeable component.
type ComponentDefinition struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`

	// Controller marks the programmable microcontroller. The simulation
	// refuses to start without one placed on the canvas.
	Controller bool `json:"controller,omitempty" yaml:"controller"`

	Pins []PinDefinition `json:"pins" yaml:"pins"`
}

// Pin returns the pin with the given id.
func (d ComponentDefinition) Pin(id string) (PinDefinition, bool) {
	for _, p := range d.Pins {
		if p.ID == id {
			return p, true
		}
	}
	return PinDefinition{}, false
}

// HasRole reports whether any pin of the definition has the given role.
func (d ComponentDefinition) HasRole(role PinRole) bool {
	for _, p := range d.Pins {
		if p.Role == role {
			return true
		}
	}
	return false
}

// Validate checks the definition for structural errors.
func (d ComponentDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	if !d.Category.IsValid() {
		return fmt.Errorf("%w: %q on %s", ErrInvalidCategory, d.Category, d.ID)
	}
	seen := make(map[string]struct{}, len(d.Pins))
	for _, p := range d.Pins {
		if p.ID == "" {
			return fmt.Errorf("%w: %s has a pin without id", ErrInvalidDefinition, d.ID)
		}
		if !p.Role.IsValid() {
			return fmt.Errorf("%w: %q on %s.%s", ErrInvalidRole, p.Role, d.ID, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s.%s", ErrDuplicatePin, d.ID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Catalog is an immutable lookup table of component definitions.
type Catalog struct {
	defs  map[string]ComponentDefinition
	order []string
}

// New builds a catalog from the given definitions.
// Later definitions with the same id replace earlier ones.
func New(defs ...ComponentDefinition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]ComponentDefinition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.defs[d.ID]; !exists {
			c.order = append(c.order, d.ID)
		}
		c.defs[d.ID] = copyDefinition(d)
	}
	return c, nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (ComponentDefinition, bool) {
	d, ok := c.defs[id]
	if !ok {
		return ComponentDefinition{}, false
	}
	return copyDefinition(d), true
}

// Pin resolves a pin by definition id and pin id.
func (c *Catalog) Pin(defID, pinID string) (PinDefinition, bool) {
	d, ok := c.defs[defID]
	if !ok {
		return PinDefinition{}, false
	}
	return d.Pin(pinID)
}

// List returns all definitions in registration order.
func (c *Catalog) List() []ComponentDefinition {
	out := make([]ComponentDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyDefinition(c.defs[id]))
	}
	return out
}

// ByCategory returns all definitions in the given category, sorted by id.
func (c *Catalog) ByCategory(cat Category) []ComponentDefinition {
	var out []ComponentDefinition
	for _, d := range c.defs {
		if d.Category == cat {
			out = append(out, copyDefinition(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

func copyDefinition(d ComponentDefinition) ComponentDefinition {
	cpy := d
	if d.Pins != nil {
		cpy.Pins = make([]PinDefinition, len(d.Pins))
		copy(cpy.Pins, d.Pins)
	}
	return cpy
}

// networkModules are definitions that bridge the serial bus to WiFi.
var networkModules = map[string]struct{}{
	"iot-module": {},
	"obloq":      {},
}

// IsNetworkModule reports whether defID is a serial-to-WiFi network module.
func IsNetworkModule(defID string) bool {
	_, ok := networkModules[defID]
	return ok
}
