package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinDefinitions(t *testing.T) {
	c := Builtin()

	want := []string{
		"microbit", "expansion-board", "temp-humidity-sensor", "light-sensor",
		"infrared-sensor", "sound-sensor", "led-strip", "buzzer", "servo",
		"relay", "iot-module", "obloq", "router", "pc-server", "database", "browser",
	}
	if c.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", c.Len(), len(want))
	}
	for i, d := range c.List() {
		if d.ID != want[i] {
			t.Errorf("List()[%d].ID = %q, want %q", i, d.ID, want[i])
		}
	}
}

func TestBuiltinPins(t *testing.T) {
	c := Builtin()

	tests := []struct {
		defID string
		pinID string
		role  PinRole
	}{
		{"microbit", "usb", RoleUSB},
		{"microbit", "3v", RolePower},
		{"microbit", "gnd", RoleGround},
		{"expansion-board", "slot-p0", RoleAnalog},
		{"expansion-board", "p13", RoleDigital},
		{"expansion-board", "3v-out4", RolePower},
		{"expansion-board", "gnd-out1", RoleGround},
		{"expansion-board", "tx", RoleSerialTX},
		{"expansion-board", "rx", RoleSerialRX},
		{"temp-humidity-sensor", "data", RoleData},
		{"light-sensor", "ao", RoleAnalog},
		{"infrared-sensor", "out", RoleDigital},
		{"buzzer", "vcc", RolePower},
		{"obloq", "tx", RoleSerialTX},
		{"obloq", "wifi", RoleData},
		{"router", "wifi", RoleData},
		{"pc-server", "usb", RoleUSB},
		{"database", "connection", RoleData},
	}

	for _, tt := range tests {
		t.Run(tt.defID+"."+tt.pinID, func(t *testing.T) {
			p, ok := c.Pin(tt.defID, tt.pinID)
			if !ok {
				t.Fatalf("Pin(%q, %q) not found", tt.defID, tt.pinID)
			}
			if p.Role != tt.role {
				t.Errorf("Role = %q, want %q", p.Role, tt.role)
			}
		})
	}

	if _, ok := c.Pin("microbit", "nope"); ok {
		t.Error("Pin() found unknown pin")
	}
	if _, ok := c.Pin("nope", "vcc"); ok {
		t.Error("Pin() found pin on unknown definition")
	}
}

func TestBuiltinController(t *testing.T) {
	c := Builtin()
	var controllers []string
	for _, d := range c.List() {
		if d.Controller {
			controllers = append(controllers, d.ID)
		}
	}
	if len(controllers) != 1 || controllers[0] != "microbit" {
		t.Errorf("controllers = %v, want [microbit]", controllers)
	}
}

func TestByCategory(t *testing.T) {
	c := Builtin()

	sensors := c.ByCategory(CategorySensor)
	if len(sensors) != 4 {
		t.Fatalf("ByCategory(sensor) returned %d, want 4", len(sensors))
	}
	for i := 1; i < len(sensors); i++ {
		if sensors[i-1].ID > sensors[i].ID {
			t.Errorf("ByCategory not sorted: %q before %q", sensors[i-1].ID, sensors[i].ID)
		}
	}

	if got := len(c.ByCategory(CategoryMainboard)); got != 2 {
		t.Errorf("ByCategory(mainboard) returned %d, want 2", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := Builtin()
	d, ok := c.Get("microbit")
	if !ok {
		t.Fatal("Get(microbit) not found")
	}
	d.Pins[0].ID = "mutated"

	again, _ := c.Get("microbit")
	if again.Pins[0].ID == "mutated" {
		t.Error("Get() returned shared pin slice")
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     ComponentDefinition
		wantErr error
	}{
		{
			name: "valid",
			def: ComponentDefinition{ID: "x", Category: CategorySensor, Pins: []PinDefinition{
				{ID: "vcc", Role: RolePower},
			}},
		},
		{
			name:    "missing id",
			def:     ComponentDefinition{Category: CategorySensor},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "bad category",
			def:     ComponentDefinition{ID: "x", Category: "widget"},
			wantErr: ErrInvalidCategory,
		},
		{
			name: "bad role",
			def: ComponentDefinition{ID: "x", Category: CategorySensor, Pins: []PinDefinition{
				{ID: "vcc", Role: "vdd"},
			}},
			wantErr: ErrInvalidRole,
		},
		{
			name: "duplicate pin",
			def: ComponentDefinition{ID: "x", Category: CategorySensor, Pins: []PinDefinition{
				{ID: "vcc", Role: RolePower},
				{ID: "vcc", Role: RoleGround},
			}},
			wantErr: ErrDuplicatePin,
		},
		{
			name: "pin without id",
			def: ComponentDefinition{ID: "x", Category: CategorySensor, Pins: []PinDefinition{
				{Role: RolePower},
			}},
			wantErr: ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileMergesOverBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `
components:
  - id: buzzer
    name: Passive Buzzer
    category: actuator
    pins:
      - {id: vcc, name: VCC, role: power}
      - {id: io, name: IO, role: digital}
      - {id: gnd, name: GND, role: ground}
  - id: soil-moisture-sensor
    name: Soil Moisture Sensor
    category: sensor
    pins:
      - {id: vcc, name: VCC, role: power}
      - {id: ao, name: AO, role: analog}
      - {id: gnd, name: GND, role: ground}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if c.Len() != Builtin().Len()+1 {
		t.Errorf("Len() = %d, want %d", c.Len(), Builtin().Len()+1)
	}
	b, _ := c.Get("buzzer")
	if b.Name != "Passive Buzzer" {
		t.Errorf("buzzer name = %q, want override", b.Name)
	}
	if _, ok := c.Get("soil-moisture-sensor"); !ok {
		t.Error("new definition missing after merge")
	}

	// Built-in catalogue is untouched.
	orig, _ := Builtin().Get("buzzer")
	if orig.Name == "Passive Buzzer" {
		t.Error("LoadFile() mutated the built-in catalogue")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) expected error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	data := "components:\n  - id: x\n    category: sensor\n    pins:\n      - {id: a, role: laser}\n"
	if err := os.WriteFile(bad, []byte(data), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := LoadFile(bad); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("LoadFile(bad role) = %v, want ErrInvalidRole", err)
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("widgets: []\n"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := LoadFile(unknown); err == nil {
		t.Error("LoadFile(unknown field) expected error")
	}
}

func TestIsNetworkModule(t *testing.T) {
	for id, want := range map[string]bool{
		"iot-module": true,
		"obloq":      true,
		"router":     false,
		"microbit":   false,
	} {
		if got := IsNetworkModule(id); got != want {
			t.Errorf("IsNetworkModule(%q) = %v, want %v", id, got, want)
		}
	}
}
