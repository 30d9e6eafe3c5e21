package world

import (
	"time"

	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/dispatch"
)

// Speed bounds for the simulation clock.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 3.0
	DefaultSpeed = 1.0
)

// MaxLogEntries caps the log stream; the oldest entries are dropped first.
const MaxLogEntries = 100

// DefaultSSID is the router SSID of a fresh world.
const DefaultSSID = "School_WiFi"

// LogLevel classifies a log entry.
type LogLevel string

// Log levels.
const (
	LevelInfo    LogLevel = "info"
	LevelData    LogLevel = "data"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// LogEntry is one line in the simulation log stream.
type LogEntry struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
}

// RouterConfig is the wireless router's configuration.
type RouterConfig struct {
	SSID     string `json:"ssid" yaml:"ssid"`
	Password string `json:"password,omitempty" yaml:"password"`
}

// ClockState is the simulation clock. It is never persisted.
type ClockState struct {
	Running         bool      `json:"running"`
	Speed           float64   `json:"speed"`
	LastTick        time.Time `json:"lastTick"`
	AutoFluctuation bool      `json:"autoFluctuation"`
}

// World is the complete simulation state. It is a value: Clone before
// mutating anything reachable from it.
type World struct {
	Components []circuit.Component   `json:"components"`
	Wires      []circuit.Wire        `json:"wires"`
	Database   dispatch.Database     `json:"database"`
	Server     dispatch.ServerConfig `json:"server"`
	Router     RouterConfig          `json:"router"`
	Clock      ClockState            `json:"clock"`
	Code       string                `json:"code"`
	Deployed   bool                  `json:"deployed"`
	Logs       []LogEntry            `json:"logs"`
}

// Default returns a fresh, empty world.
func Default() World {
	return World{
		Components: []circuit.Component{},
		Wires:      []circuit.Wire{},
		Database:   dispatch.DefaultDatabase(),
		Server:     dispatch.DefaultServerConfig(),
		Router:     RouterConfig{SSID: DefaultSSID},
		Clock:      ClockState{Speed: DefaultSpeed, AutoFluctuation: true},
		Logs:       []LogEntry{},
	}
}

// Clone returns a deep copy of w.
func (w World) Clone() World {
	out := w
	out.Components = make([]circuit.Component, len(w.Components))
	for i, c := range w.Components {
		out.Components[i] = cloneComponent(c)
	}
	out.Wires = append([]circuit.Wire{}, w.Wires...)
	out.Database = w.Database.Clone()
	out.Server = w.Server.Clone()
	out.Logs = append([]LogEntry{}, w.Logs...)
	return out
}

// Component returns the instance with the given id.
func (w World) Component(instanceID string) (circuit.Component, bool) {
	if i := w.componentIndex(instanceID); i >= 0 {
		return cloneComponent(w.Components[i]), true
	}
	return circuit.Component{}, false
}

// WithPower returns a copy of w whose component Powered flags reflect eval.
func (w World) WithPower(eval circuit.Evaluation) World {
	out := w.Clone()
	for i := range out.Components {
		out.Components[i].State.Powered = eval.Powered(out.Components[i].InstanceID)
	}
	return out
}

func (w World) componentIndex(instanceID string) int {
	for i, c := range w.Components {
		if c.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (w World) wireIndex(id string) int {
	for i, wr := range w.Wires {
		if wr.ID == id {
			return i
		}
	}
	return -1
}

func cloneComponent(c circuit.Component) circuit.Component {
	if c.State.Value != nil {
		v := *c.State.Value
		c.State.Value = &v
	}
	return c
}
