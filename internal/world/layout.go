package world

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/dispatch"
	"github.com/hangsome/system-builder-studio/internal/sensor"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// Layout is the portable part of a world: what the user built, without the
// clock, logs or database contents.
type Layout struct {
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description,omitempty" yaml:"description"`
	Components  []circuit.Component    `json:"components" yaml:"components"`
	Wires       []circuit.Wire         `json:"wires" yaml:"wires"`
	Router      *RouterConfig          `json:"router,omitempty" yaml:"router"`
	Server      *dispatch.ServerConfig `json:"server,omitempty" yaml:"server"`
	Code        string                 `json:"code,omitempty" yaml:"code"`
}

// ScenarioNames lists the built-in scenarios, sorted.
func ScenarioNames() []string {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Scenario returns a built-in scenario by name.
func Scenario(name string) (Layout, error) {
	data, err := scenarioFS.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	return decodeLayout(data)
}

// LoadScenarioFile reads a layout from a YAML file.
func LoadScenarioFile(filePath string) (Layout, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // operator-supplied path
	if err != nil {
		return Layout{}, fmt.Errorf("reading scenario file: %w", err)
	}
	return decodeLayout(data)
}

func decodeLayout(data []byte) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return l, nil
}

// LoadScenario applies a built-in scenario.
func (s *Store) LoadScenario(name string) error {
	l, err := Scenario(name)
	if err != nil {
		return err
	}
	return s.ApplyLayout(l)
}

// ApplyLayout replaces the components, wires and configuration with those in
// l. Every wire is re-validated in order; an invalid or duplicate wire
// rejects the whole layout. The simulation is stopped and the deployment
// flag cleared.
func (s *Store) ApplyLayout(l Layout) error {
	cat := s.analyzer.Catalog()

	err := s.mutate(func(w *World) error {
		comps := make([]circuit.Component, 0, len(l.Components))
		seen := make(map[string]bool, len(l.Components))
		for _, c := range l.Components {
			if c.InstanceID == "" || seen[c.InstanceID] {
				return fmt.Errorf("%w: missing or duplicate instance id %q", ErrInvalidLayout, c.InstanceID)
			}
			seen[c.InstanceID] = true
			if _, ok := cat.Get(c.DefinitionID); !ok {
				return fmt.Errorf("%w: %s: %w", ErrInvalidLayout, c.InstanceID, ErrUnknownDefinition)
			}
			c = cloneComponent(c)
			if p, ok := sensor.ProfileFor(c.DefinitionID); ok && c.State.Value == nil {
				v := p.Default
				c.State.Value = &v
			}
			c.State.Powered = false
			comps = append(comps, c)
		}

		wires := make([]circuit.Wire, 0, len(l.Wires))
		set := circuit.NewWireSet(nil)
		for _, wr := range l.Wires {
			res := s.analyzer.Validate(wr.FromInstance, wr.FromPin, wr.ToInstance, wr.ToPin, comps, wires)
			if err := res.Err(); err != nil {
				return fmt.Errorf("%w: wire %s: %w", ErrInvalidLayout, wr.ID, err)
			}
			from, to := wr.From(), wr.To()
			if set.Has(from, to) {
				return fmt.Errorf("%w: wire %s: %w", ErrInvalidLayout, wr.ID, ErrDuplicateWire)
			}
			stored := newWire(from, to, res.Role)
			if wr.ID != "" {
				stored.ID = wr.ID
			}
			wires = append(wires, stored)
			set.Add(stored)
		}

		w.Components = comps
		w.Wires = wires
		if l.Router != nil {
			w.Router = *l.Router
		}
		if l.Server != nil {
			if err := validateServer(*l.Server); err != nil {
				return err
			}
			w.Server = l.Server.Clone()
		}
		w.Code = l.Code
		w.Deployed = false
		w.Clock.Running = false
		return nil
	})
	if err != nil {
		return err
	}

	s.AppendLog(LevelInfo, "system", fmt.Sprintf("layout %q loaded", l.Name))
	return nil
}

// ExportLayout captures the current world as a named layout.
func (s *Store) ExportLayout(name, description string) Layout {
	w := s.Snapshot()
	router := w.Router
	server := w.Server.Clone()
	return Layout{
		Name:        name,
		Description: description,
		Components:  w.Components,
		Wires:       w.Wires,
		Router:      &router,
		Server:      &server,
		Code:        w.Code,
	}
}
